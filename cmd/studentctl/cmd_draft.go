package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"student-backend/internal/records"
)

var draftForce bool

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Create and check student record drafts",
	Long: `Drafts are YAML files holding one student record:

  name: Asha
  age: 20
  department: CSE
  semesters:
    - semester: 1
      internal_marks: 200
      university_marks: 210
      attendance: 85`,
}

// draftInitCmd writes a fresh draft with one empty semester
var draftInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write a new draft file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftInit,
}

var draftValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a draft without submitting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftValidate,
}

func init() {
	draftInitCmd.Flags().BoolVarP(&draftForce, "force", "f", false, "overwrite an existing file")
	draftCmd.AddCommand(draftInitCmd, draftValidateCmd)
}

func runDraftInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !draftForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}
	if err := writeDraft(path, records.NewDraft()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runDraftValidate(cmd *cobra.Command, args []string) error {
	d, err := readDraft(args[0])
	if err != nil {
		return err
	}
	if _, err := d.Validate(); err != nil {
		var fe records.FieldErrors
		if errors.As(err, &fe) {
			renderFieldErrors(cmd.OutOrStdout(), fe)
		}
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s is ready to submit\n", args[0])
	return nil
}

func writeDraft(path string, d *records.Draft) error {
	data, err := yaml.Marshal(d.Input())
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

func readDraft(path string) (*records.Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open draft: %w", err)
	}
	defer f.Close()
	return decodeDraft(f)
}

func decodeDraft(r io.Reader) (*records.Draft, error) {
	var in records.StudentInput
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return records.FromInput(in)
}
