package documents

import (
	"context"
	_ "embed"
	"reflect"
	"strings"

	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/runtime/execution"
)

const name = "documents"

//go:embed msa.md
var vendorMSA string

// Service exposes vendor document lookups. The only action it carries is
// restricted to executive access and stays invisible to everyone else.
type Service struct{}

// New creates a new documents service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// QueryInput optionally narrows the lookup to sections containing the given
// fragment.
type QueryInput struct {
	Query string `json:"query,omitempty"`
}

// QueryOutput carries the requested document content.
type QueryOutput struct {
	Content string             `json:"content,omitempty"`
	Outcome *execution.Outcome `json:"outcome,omitempty"`
}

func (o *QueryOutput) ActionOutcome() *execution.Outcome { return o.Outcome }

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "queryVendorMSA",
			Description: "Returns the vendor master service agreement, optionally narrowed to matching sections.",
			Mode:        types.ModeDirect,
			Sensitive:   true,
			Parameters: []types.Parameter{
				{Name: "query", Description: "fragment to look up within the agreement"},
			},
			Input:  reflect.TypeOf(&QueryInput{}),
			Output: reflect.TypeOf(&QueryOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch name {
	case "queryVendorMSA":
		return s.queryVendorMSA, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) queryVendorMSA(_ context.Context, in, out interface{}) error {
	input, ok := in.(*QueryInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*QueryOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	content := vendorMSA
	if input.Query != "" {
		content = matchingSections(vendorMSA, input.Query)
		if content == "" {
			output.Outcome = execution.Invalid("nothing in the vendor agreement matches %v", input.Query)
			return nil
		}
	}
	output.Content = content
	output.Outcome = execution.OK("vendor agreement retrieved")
	return nil
}

// matchingSections returns the markdown sections that contain the fragment,
// case-insensitive. A section spans from one heading to the next.
func matchingSections(document, fragment string) string {
	needle := strings.ToLower(fragment)
	var sections []string
	var current []string
	flush := func() {
		section := strings.TrimSpace(strings.Join(current, "\n"))
		if section != "" && strings.Contains(strings.ToLower(section), needle) {
			sections = append(sections, section)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(document, "\n") {
		if strings.HasPrefix(line, "#") {
			flush()
		}
		current = append(current, line)
	}
	flush()
	return strings.Join(sections, "\n\n")
}
