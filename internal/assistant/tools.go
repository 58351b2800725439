package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/ozcamlab/museum-explorer-go/internal/biocache"
)

const (
	toolSearchSpecimens = "search_specimens"
	toolStatistics      = "get_specimen_statistics"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// buildTools declares the functions the model may call. The parameter names
// mirror the search filter set one-to-one so arguments decode straight into
// it.
func buildTools() []openai.ChatCompletionToolUnionParam {
	searchProperties := map[string]any{
		"scientific_name": map[string]string{
			"type":        "string",
			"description": "Scientific name to search for (genus, species, family, order, etc.)",
		},
		"common_name": map[string]string{
			"type":        "string",
			"description": "Common/vernacular name of the organism",
		},
		"state_province": map[string]string{
			"type":        "string",
			"description": "Australian state or territory (e.g., 'New South Wales', 'Queensland')",
		},
		"place": map[string]string{
			"type":        "string",
			"description": "Australian suburb, city or region name to search around (e.g., 'Castle Hill', 'Sydney')",
		},
		"year": map[string]string{
			"type":        "integer",
			"description": "Year of collection/observation",
		},
		"year_range": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_year": map[string]string{"type": "integer"},
				"end_year":   map[string]string{"type": "integer"},
			},
			"description": "Range of years for temporal queries",
		},
		"bounds": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"north": map[string]string{"type": "number"},
				"south": map[string]string{"type": "number"},
				"east":  map[string]string{"type": "number"},
				"west":  map[string]string{"type": "number"},
			},
			"description": "Geographic bounding box for spatial queries",
		},
		"collection_name": map[string]string{
			"type":        "string",
			"description": "Name of the museum collection",
		},
		"basis_of_record": map[string]any{
			"type":        "string",
			"enum":        []string{"PRESERVED_SPECIMEN", "HUMAN_OBSERVATION", "LIVING_SPECIMEN", "MACHINE_OBSERVATION"},
			"description": "Type of specimen record",
		},
		"has_image": map[string]string{
			"type":        "boolean",
			"description": "Filter for specimens with images",
		},
		"limit": map[string]string{
			"type":        "integer",
			"description": "Maximum number of results to return (default 10, max 100)",
		},
	}

	statsProperties := map[string]any{
		"scientific_name": map[string]string{
			"type":        "string",
			"description": "Scientific name to get statistics for",
		},
		"common_name": map[string]string{
			"type":        "string",
			"description": "Common name to get statistics for",
		},
		"state_province": map[string]string{
			"type":        "string",
			"description": "State to get statistics for",
		},
	}

	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        toolSearchSpecimens,
			Description: openai.String("Search the OZCAM specimen dataset from the Australian Museum via the ALA Biocache API"),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": searchProperties,
			},
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        toolStatistics,
			Description: openai.String("Get statistical summary of specimens matching the search criteria"),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": statsProperties,
			},
		}),
	}
}

// searchArgs is the decoded argument payload of a search_specimens call.
type searchArgs struct {
	ScientificName string              `json:"scientific_name"`
	CommonName     string              `json:"common_name"`
	StateProvince  string              `json:"state_province"`
	Place          string              `json:"place"`
	Year           int                 `json:"year"`
	YearRange      *biocache.YearRange `json:"year_range"`
	Bounds         *biocache.Bounds    `json:"bounds"`
	CollectionName string              `json:"collection_name"`
	BasisOfRecord  string              `json:"basis_of_record"`
	HasImage       bool                `json:"has_image"`
	Limit          int                 `json:"limit"`
}

// statsArgs is the decoded argument payload of a get_specimen_statistics call.
type statsArgs struct {
	ScientificName string `json:"scientific_name"`
	CommonName     string `json:"common_name"`
	StateProvince  string `json:"state_province"`
}

func decodeSearchArgs(raw string) (searchArgs, error) {
	var args searchArgs
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return args, fmt.Errorf("failed to parse search arguments: %w", err)
		}
	}
	if args.Limit <= 0 {
		args.Limit = defaultLimit
	}
	if args.Limit > maxLimit {
		args.Limit = maxLimit
	}
	// A year range with only one bound is meaningless; drop it.
	if args.YearRange != nil && (args.YearRange.Start == 0 || args.YearRange.End == 0) {
		args.YearRange = nil
	}
	return args, nil
}

func decodeStatsArgs(raw string) (statsArgs, error) {
	var args statsArgs
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return args, fmt.Errorf("failed to parse statistics arguments: %w", err)
		}
	}
	return args, nil
}

// filterSet converts the decoded arguments into a search filter set.
// Place is resolved separately because it needs a geocoding round trip.
func (a searchArgs) filterSet() biocache.FilterSet {
	return biocache.FilterSet{
		ScientificName: a.ScientificName,
		CommonName:     a.CommonName,
		StateProvince:  a.StateProvince,
		Year:           a.Year,
		YearRange:      a.YearRange,
		Bounds:         a.Bounds,
		CollectionName: a.CollectionName,
		BasisOfRecord:  a.BasisOfRecord,
		HasImage:       a.HasImage,
	}
}

func (a statsArgs) filterSet() biocache.FilterSet {
	return biocache.FilterSet{
		ScientificName: a.ScientificName,
		CommonName:     a.CommonName,
		StateProvince:  a.StateProvince,
	}
}
