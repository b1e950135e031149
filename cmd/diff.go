package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/propwire/propwire/internal/bag"
	"github.com/propwire/propwire/internal/log"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/store"
	"github.com/propwire/propwire/internal/tracing"
	"github.com/propwire/propwire/internal/wire"
)

var (
	diffBaselineID string
	diffObjectType string
)

var diffCmd = &cobra.Command{
	Use:   "diff [baseline-file] <working-file>",
	Short: "Render the update operations between a baseline and an edited document",
	Long: `Load a baseline document, apply an edited copy on top of it, and
print the minimal update operations a server would need.

The baseline comes from a file (two arguments) or from the local
baseline store (--baseline with the stored ID).

Examples:
  propwire diff contact.xml contact-edited.xml
  propwire diff --baseline 3f2a… contact-edited.xml`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Tracer().Start(context.Background(), tracing.SpanDiff)
		defer span.End()

		baselineDoc, workingPath, err := resolveDiffInputs(args)
		if err != nil {
			return err
		}

		v, err := activeVersion()
		if err != nil {
			return err
		}
		s, err := activeSchema(diffObjectType)
		if err != nil {
			return err
		}

		working, err := os.ReadFile(workingPath)
		if err != nil {
			return fmt.Errorf("reading working document: %w", err)
		}

		ops, err := computeOps(s, v, baselineDoc, string(working))
		if err != nil {
			return err
		}
		span.SetAttributes(
			attribute.String(tracing.AttrObjectType, s.ObjectType()),
			attribute.Int(tracing.AttrOpCount, len(ops)),
		)

		if len(ops) == 0 {
			fmt.Println("No changes.")
			return nil
		}
		return renderOps(ops)
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffBaselineID, "baseline", "b", "", "Baseline ID from the local store")
	diffCmd.Flags().StringVarP(&diffObjectType, "type", "t", "", "Object type (default from config)")
	rootCmd.AddCommand(diffCmd)
}

// resolveDiffInputs returns the baseline document text and the working
// file path from the flag and positional forms.
func resolveDiffInputs(args []string) (string, string, error) {
	if len(args) == 2 {
		if diffBaselineID != "" {
			return "", "", fmt.Errorf("--baseline conflicts with a baseline file argument")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading baseline document: %w", err)
		}
		return string(data), args[1], nil
	}

	if diffBaselineID == "" {
		return "", "", fmt.Errorf("provide a baseline file or --baseline <id>")
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = st.Close() }()

	b, err := st.Get(diffBaselineID)
	if err != nil {
		return "", "", err
	}
	if diffObjectType == "" {
		diffObjectType = b.ObjectType
	}
	return b.Payload, args[0], nil
}

// computeOps hydrates the baseline, reconciles the working document
// against it, and returns the resulting update operations. The working
// document is a complete rendition, so a property the baseline holds
// but the working copy omits counts as a deletion.
func computeOps(s *schema.Schema, v schema.Version, baselineDoc, workingDoc string) ([]wire.UpdateOp, error) {
	b := bag.New(s, v)

	r := wire.NewReader(strings.NewReader(baselineDoc))
	if err := r.Next(); err != nil {
		return nil, fmt.Errorf("baseline document: %w", err)
	}
	if err := b.LoadXML(r); err != nil {
		return nil, fmt.Errorf("baseline document: %w", err)
	}

	r = wire.NewReader(strings.NewReader(workingDoc))
	if err := r.Next(); err != nil {
		return nil, fmt.Errorf("working document: %w", err)
	}
	if err := b.ReconcileXML(r); err != nil {
		return nil, fmt.Errorf("working document: %w", err)
	}

	ops, err := b.ComputeUpdateOps()
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatDiff, "Computed update ops", "count", len(ops))
	return ops, nil
}

func renderOps(ops []wire.UpdateOp) error {
	var sb strings.Builder
	w := wire.NewWriter(&sb)
	if err := wire.MarshalOps(w, ops); err != nil {
		return err
	}
	fmt.Println(sb.String())
	return nil
}
