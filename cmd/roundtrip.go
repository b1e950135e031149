package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/propwire/propwire/internal/bag"
	"github.com/propwire/propwire/internal/log"
	"github.com/propwire/propwire/internal/tracing"
	"github.com/propwire/propwire/internal/watch"
	"github.com/propwire/propwire/internal/wire"
)

var (
	roundtripType  string
	roundtripWatch bool
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <file>",
	Short: "Load a document, serialize it back, and show what the codec normalizes",
	Long: `Hydrate a wire document into a property bag and serialize it back
out, then show a character diff between the input and the rendered
form. Unknown elements are dropped and formatting is normalized, so
the diff shows exactly what survives a load/store cycle.

With --watch the document is re-checked every time the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if err := runRoundtrip(path); err != nil {
			return err
		}
		if !roundtripWatch {
			return nil
		}

		w, err := watch.New(path, cfg.WatchDebounce)
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		onChange, err := w.Start()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Watching %s (ctrl-c to stop)\n", path)

		for {
			select {
			case <-onChange:
				if err := runRoundtrip(path); err != nil {
					// Keep watching through transient parse errors while
					// the file is mid-edit.
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					log.ErrorErr(log.CatCLI, "Roundtrip failed", err, "path", path)
				}
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}

func init() {
	roundtripCmd.Flags().StringVarP(&roundtripType, "type", "t", "", "Object type (default from config)")
	roundtripCmd.Flags().BoolVarP(&roundtripWatch, "watch", "w", false, "Re-run when the file changes")
	rootCmd.AddCommand(roundtripCmd)
}

func runRoundtrip(path string) error {
	_, span := tracer.Tracer().Start(context.Background(), tracing.SpanRoundtrip)
	defer span.End()

	v, err := activeVersion()
	if err != nil {
		return err
	}
	s, err := activeSchema(roundtripType)
	if err != nil {
		return err
	}

	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	b := bag.New(s, v)
	r := wire.NewReader(strings.NewReader(string(input)))
	if err := r.Next(); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	if err := b.LoadXML(r); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	var sb strings.Builder
	if err := b.WriteXML(wire.NewWriter(&sb)); err != nil {
		return fmt.Errorf("serializing document: %w", err)
	}
	rendered := sb.String()

	span.SetAttributes(
		attribute.String(tracing.AttrObjectType, s.ObjectType()),
		attribute.String(tracing.AttrFilePath, path),
	)

	if strings.TrimSpace(string(input)) == strings.TrimSpace(rendered) {
		fmt.Println("Document is stable through a load/store cycle.")
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(input), rendered, false)
	fmt.Println(dmp.DiffPrettyText(diffs))
	return nil
}
