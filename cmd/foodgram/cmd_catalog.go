package main

import (
	"Foodgram-Backend/pkg/catalog"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	ingredientsFile string // CSV with name,measurement_unit rows
	tagName         string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage tags and ingredients",
}

var loadIngredientsCmd = &cobra.Command{
	Use:   "load-ingredients",
	Short: "Import ingredients from a CSV file",
	Long: `Imports ingredients from a CSV file of name,measurement_unit rows.
Existing (name, unit) pairs are skipped.

Examples:
  foodgram catalog load-ingredients --file data/ingredients.csv`,
	RunE: runLoadIngredients,
}

var addTagCmd = &cobra.Command{
	Use:   "add-tag",
	Short: "Create a tag with a slug generated from its name",
	RunE:  runAddTag,
}

func init() {
	loadIngredientsCmd.Flags().StringVarP(&ingredientsFile, "file", "f", "data/ingredients.csv", "CSV file to import")
	addTagCmd.Flags().StringVarP(&tagName, "name", "n", "", "tag name")
	_ = addTagCmd.MarkFlagRequired("name")

	catalogCmd.AddCommand(loadIngredientsCmd)
	catalogCmd.AddCommand(addTagCmd)
}

func runLoadIngredients(cmd *cobra.Command, args []string) error {
	f, err := os.Open(ingredientsFile)
	if err != nil {
		return errors.Wrap(err, "open ingredients file")
	}
	defer f.Close()

	rows, err := catalog.ReadIngredientsCSV(f)
	if err != nil {
		return err
	}

	log, db, err := bootstrap()
	if err != nil {
		return err
	}

	service := catalog.NewCatalogService(catalog.NewCatalogRepository(db))
	result, err := service.ImportIngredients(cmd.Context(), rows)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"added": result.Added, "skipped": result.Skipped}).Info("ingredients imported")
	fmt.Fprintf(cmd.OutOrStdout(), "Added: %d, skipped: %d\n", result.Added, result.Skipped)
	return nil
}

func runAddTag(cmd *cobra.Command, args []string) error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}

	service := catalog.NewCatalogService(catalog.NewCatalogRepository(db))
	tag, err := service.CreateTag(cmd.Context(), tagName)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created tag %q with slug %q (%s)\n", tag.Name, tag.Slug, tag.ID)
	return nil
}
