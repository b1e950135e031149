package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/propwire/propwire/internal/schema"
)

var (
	listType   string
	listURI    string
	listFormat string
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	uriStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	flagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	gateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var schemaListCmd = &cobra.Command{
	Use:   "schema:list",
	Short: "List registered schemas and their property definitions",
	Long: `List the registered object schemas with each property's URI,
capability flags, minimum protocol version and diff policy.

Examples:
  # All schemas
  propwire schema:list

  # One object type
  propwire schema:list --type Group

  # Look up a single property by its field URI
  propwire schema:list --uri contact:DisplayName

  # Machine-readable output
  propwire schema:list --format json | jq '.[].properties[].uri'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listURI != "" {
			return listByURI(listURI)
		}

		types := registry.ObjectTypes()
		if listType != "" {
			if _, ok := registry.Schema(listType); !ok {
				return fmt.Errorf("unknown object type %q", listType)
			}
			types = []string{listType}
		}

		if listFormat == "json" {
			return listJSON(types)
		}
		return listText(types)
	},
}

func init() {
	schemaListCmd.Flags().StringVarP(&listType, "type", "t", "", "Show a single object type")
	schemaListCmd.Flags().StringVarP(&listURI, "uri", "u", "", "Look up one property by field URI")
	schemaListCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format: text or json")
	rootCmd.AddCommand(schemaListCmd)
}

func listByURI(uri string) error {
	def, err := registry.FindByURI(uri)
	if err != nil {
		return err
	}
	printDefinition(def)
	return nil
}

func listText(types []string) error {
	for _, objectType := range types {
		s, _ := registry.Schema(objectType)
		fmt.Println(headerStyle.Render(objectType))
		for _, def := range s.Definitions() {
			printDefinition(def)
		}
		fmt.Println()
	}
	return nil
}

func printDefinition(def *schema.Definition) {
	line := fmt.Sprintf("  %-14s %s  %s",
		def.Name(),
		uriStyle.Render(def.URI()),
		flagStyle.Render(def.Flags().String()))
	if def.MinVersion() > schema.V1 {
		line += "  " + gateStyle.Render("since "+def.MinVersion().String())
	}
	if def.Policy() == schema.DiffPerItem {
		line += "  " + gateStyle.Render("per-item")
	}
	fmt.Println(line)
}

type propertyDTO struct {
	Name       string `json:"name"`
	URI        string `json:"uri"`
	Flags      string `json:"flags"`
	MinVersion string `json:"min_version"`
	DiffPolicy string `json:"diff_policy"`
}

type schemaDTO struct {
	ObjectType string        `json:"object_type"`
	Properties []propertyDTO `json:"properties"`
}

func listJSON(types []string) error {
	var out []schemaDTO
	for _, objectType := range types {
		s, _ := registry.Schema(objectType)
		dto := schemaDTO{ObjectType: objectType}
		for _, def := range s.Definitions() {
			dto.Properties = append(dto.Properties, propertyDTO{
				Name:       def.Name(),
				URI:        def.URI(),
				Flags:      def.Flags().String(),
				MinVersion: def.MinVersion().String(),
				DiffPolicy: def.Policy().String(),
			})
		}
		out = append(out, dto)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
