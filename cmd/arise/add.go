package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/solwen/arise/internal/engine"
)

// newAddCmd groups the manual authoring commands: quests, skills and
// items written straight into the snapshot, no provider involved.
func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Author quests, skills and items by hand",
	}
	cmd.AddCommand(newAddQuestCmd(), newAddSkillCmd(), newAddItemCmd())
	return cmd
}

func newAddQuestCmd() *cobra.Command {
	var in engine.UserQuestInput
	cmd := &cobra.Command{
		Use:   "quest",
		Short: "Add a user-created quest",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(io.Discard)
			if err != nil {
				return err
			}
			id, err := eng.AddUserQuest(in, time.Now())
			if err != nil {
				return err
			}
			fmt.Println("quest added:", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "quest title")
	cmd.Flags().StringVar(&in.Description, "desc", "", "description")
	cmd.Flags().StringVar(&in.Category, "category", "CONTROL", "category")
	cmd.Flags().IntVar(&in.Target, "target", 1, "required repetitions")
	cmd.Flags().StringVar(&in.Reward, "reward", "", "reward text")
	cmd.Flags().IntVar(&in.DeadlineDays, "days", 0, "days until the deadline (0 for none)")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newAddSkillCmd() *cobra.Command {
	var in engine.UserSkillInput
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Add a user-authored skill (never counts toward the generated pool)",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(io.Discard)
			if err != nil {
				return err
			}
			id, err := eng.AddUserSkill(in)
			if err != nil {
				return err
			}
			fmt.Println("skill added:", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "skill name")
	cmd.Flags().StringVar(&in.Kind, "type", "COGNITIVE", "skill type")
	cmd.Flags().StringVar(&in.Description, "desc", "", "description")
	cmd.Flags().StringVar(&in.TestTask, "test-task", "", "verification task")
	cmd.Flags().Float64Var(&in.TestTarget, "test-target", 1, "verification target")
	cmd.Flags().StringVar(&in.TestUnit, "test-unit", "", "verification unit")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newAddItemCmd() *cobra.Command {
	var name, category, desc string
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Register an owned item for generation prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(io.Discard)
			if err != nil {
				return err
			}
			id, err := eng.AddItem(name, category, desc)
			if err != nil {
				return err
			}
			fmt.Println("item added:", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&category, "category", "", "item category")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.MarkFlagRequired("name")
	return cmd
}
