package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/coursecatalog/backend/core/category"
)

func (cli *commandLine) addCategoryCommand() *cobra.Command {
	var (
		name   string
		parent int
	)
	cmd := &cobra.Command{
		Use:   "addcategory",
		Short: "Create a course category",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			nc := category.NewCategory{Name: name}
			if parent != 0 {
				nc.ParentID = &parent
			}
			return cli.addCategory(nc)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "The category name")
	cmd.Flags().IntVar(&parent, "parent", 0, "The parent category id, if any")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (cli *commandLine) addCategory(nc category.NewCategory) error {
	cat, err := cli.catSvc.Create(context.Background(), nc)
	if err != nil {
		return cli.describe(err)
	}
	cli.printf("category %q created (id %d)\n", cat.Name, cat.ID)
	return nil
}
