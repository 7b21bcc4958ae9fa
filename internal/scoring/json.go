package scoring

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
)

// jsonStrategy grades structured-output cases. Valid JSON that satisfies the
// case schema is correct, valid JSON with the wrong shape is partial, and
// output that merely starts like JSON but fails to parse counts as a
// structurally present wrong answer.
type jsonStrategy struct{}

func (jsonStrategy) Kind() models.SuiteKind { return models.KindJSON }

func (jsonStrategy) Score(cs models.CaseSpec, rr models.RunResult) (models.Score, string) {
	body := strings.TrimSpace(inference.StripMarkdownFences(rr.Output))
	if body == "" {
		return models.ScoreUnusable, ReasonEmpty
	}

	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		if looksLikeJSON(body) {
			return models.ScoreWrong, ReasonAlmostJSON
		}
		return models.ScoreUnusable, ReasonUnparseable
	}

	if len(cs.Expect.Schema) == 0 {
		return models.ScoreCorrect, ReasonExactMatch
	}

	schema, err := CompileSchema(cs.ID, cs.Expect.Schema)
	if err != nil {
		return models.ScoreUnusable, ReasonSchemaError
	}
	if err := schema.Validate(parsed); err != nil {
		return models.ScorePartial, ReasonSchemaMismatch
	}
	return models.ScoreCorrect, ReasonSchemaMatch
}

// schemaCache memoizes compiled schemas by their normalized document, so
// the registration-time compile is the only one a run pays for. The key is
// the document's canonical JSON encoding; encoding/json sorts map keys, so
// equal documents always collide.
var schemaCache sync.Map // string -> *jsonschema.Schema

// CompileSchema builds a validator from a case's inline schema document.
// Suite registration calls this too, so an unloadable schema fails the run
// before any model is invoked and every scored run hits the cache.
func CompileSchema(caseID string, doc map[string]any) (*jsonschema.Schema, error) {
	normalized := normalizeSchemaDoc(doc)
	key, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	if cached, ok := schemaCache.Load(string(key)); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiler := jsonschema.NewCompiler()
	url := "modelbench:///" + caseID + ".json"
	if err := compiler.AddResource(url, normalized); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(string(key), schema)
	return schema, nil
}

// normalizeSchemaDoc rewrites YAML-decoded values into the shapes the
// compiler expects, mainly map[any]any keys from nested yaml documents.
func normalizeSchemaDoc(v any) any {
	switch doc := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(doc))
		for k, val := range doc {
			out[k] = normalizeSchemaDoc(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(doc))
		for k, val := range doc {
			if key, ok := k.(string); ok {
				out[key] = normalizeSchemaDoc(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(doc))
		for i, val := range doc {
			out[i] = normalizeSchemaDoc(val)
		}
		return out
	default:
		return v
	}
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
