package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/propwire/propwire/internal/bag"
	"github.com/propwire/propwire/internal/store"
	"github.com/propwire/propwire/internal/tracing"
	"github.com/propwire/propwire/internal/wire"
)

var (
	saveType      string
	saveChangeKey string
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage the local baseline store",
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Validate a document and store it as a baseline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Tracer().Start(context.Background(), tracing.SpanStore)
		defer span.End()

		v, err := activeVersion()
		if err != nil {
			return err
		}
		s, err := activeSchema(saveType)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}

		// Hydrate once so malformed documents are rejected before they
		// land in the store.
		b := bag.New(s, v)
		r := wire.NewReader(strings.NewReader(string(data)))
		if err := r.Next(); err != nil {
			return fmt.Errorf("parsing document: %w", err)
		}
		if err := b.LoadXML(r); err != nil {
			return fmt.Errorf("parsing document: %w", err)
		}

		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		id, err := st.Save(store.Baseline{
			ObjectType: s.ObjectType(),
			ChangeKey:  saveChangeKey,
			Payload:    string(data),
		})
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.String(tracing.AttrBaselineID, id))
		fmt.Println(id)
		return nil
	},
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored baselines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		baselines, err := st.List()
		if err != nil {
			return err
		}
		if len(baselines) == 0 {
			fmt.Println("No baselines stored.")
			return nil
		}
		for _, b := range baselines {
			line := fmt.Sprintf("%s  %-8s %s",
				b.ID, b.ObjectType, b.UpdatedAt.Format("2006-01-02 15:04:05"))
			if b.ChangeKey != "" {
				line += "  " + uriStyle.Render(b.ChangeKey)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var baselineDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored baseline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		return st.Delete(args[0])
	},
}

func init() {
	baselineSaveCmd.Flags().StringVarP(&saveType, "type", "t", "", "Object type (default from config)")
	baselineSaveCmd.Flags().StringVarP(&saveChangeKey, "change-key", "k", "", "Server change key to record")
	baselineCmd.AddCommand(baselineSaveCmd, baselineListCmd, baselineDeleteCmd)
	rootCmd.AddCommand(baselineCmd)
}
