package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedData is the YAML document used to populate the in-memory catalog.
type SeedData struct {
	Tools   []SeedTool   `yaml:"tools"`
	Reviews []SeedReview `yaml:"reviews"`
}

// SeedTool describes one tool in a seed file.
type SeedTool struct {
	ID          ID       `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	UseCase     string   `yaml:"use_case"`
	Category    string   `yaml:"category"`
	Pricing     string   `yaml:"pricing"`
	AvgRating   *float64 `yaml:"avg_rating"`
}

// SeedReview describes one review in a seed file.
type SeedReview struct {
	ID     ID      `yaml:"id"`
	ToolID ID      `yaml:"tool_id"`
	Rating float64 `yaml:"rating"`
	Text   string  `yaml:"review_text"`
	Status Status  `yaml:"status"`
}

// UnmarshalYAML accepts numeric and string ids.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("catalog: id must be a scalar (line %d)", node.Line)
	}
	*id = ID(node.Value)
	return nil
}

// DecodeSeed parses a seed document.
func DecodeSeed(r io.Reader) (SeedData, error) {
	var data SeedData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil && err != io.EOF {
		return SeedData{}, fmt.Errorf("catalog: decode seed: %w", err)
	}
	for i, review := range data.Reviews {
		switch review.Status {
		case "", StatusPending, StatusApproved, StatusRejected:
		default:
			return SeedData{}, fmt.Errorf("catalog: seed review %d has unknown status %q", i, review.Status)
		}
	}
	return data, nil
}

// LoadSeedFile reads and parses the seed file at path.
func LoadSeedFile(path string) (SeedData, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("catalog: open seed: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}

// Apply loads the seed into svc.
func (d SeedData) Apply(svc *StaticService) {
	tools := make([]Tool, 0, len(d.Tools))
	for _, t := range d.Tools {
		tools = append(tools, Tool{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			UseCase:     t.UseCase,
			Category:    t.Category,
			Pricing:     t.Pricing,
			AvgRating:   t.AvgRating,
		})
	}
	reviews := make([]Review, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		reviews = append(reviews, Review{
			ID:     r.ID,
			ToolID: r.ToolID,
			Rating: r.Rating,
			Text:   r.Text,
			Status: r.Status,
		})
	}
	svc.Seed(tools, reviews)
}

//go:embed seed/default.yaml
var defaultSeed []byte

// DefaultSeed returns the bundled demo catalog.
func DefaultSeed() (SeedData, error) {
	return DecodeSeed(bytes.NewReader(defaultSeed))
}
