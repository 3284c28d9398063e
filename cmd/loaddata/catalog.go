package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/importer"
	"github.com/pageza/foodgram/backend/internal/service"
)

var fixturePath string

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Import ingredients from a CSV or JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, format, err := openFixture()
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := importer.ReadIngredients(f, format)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		result, err := importer.LoadIngredients(cmd.Context(), service.NewCatalogService(db), records)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Ingredients: %d created, %d already present\n", result.Created, result.Existing)
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Import tags from a CSV or JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, format, err := openFixture()
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := importer.ReadTags(f, format)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		result, err := importer.LoadTags(cmd.Context(), service.NewCatalogService(db), records)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tags: %d created, %d already present\n", result.Created, result.Existing)
		return nil
	},
}

func openFixture() (*os.File, importer.Format, error) {
	if fixturePath == "" {
		return nil, "", fmt.Errorf("--file is required")
	}
	format, err := importer.FormatFromPath(fixturePath)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(fixturePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open fixture: %w", err)
	}
	return f, format, nil
}

func init() {
	for _, cmd := range []*cobra.Command{ingredientsCmd, tagsCmd} {
		cmd.Flags().StringVar(&fixturePath, "file", "", "Path to a .csv or .json fixture")
		rootCmd.AddCommand(cmd)
	}
}
