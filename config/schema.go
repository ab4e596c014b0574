package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

const durationPattern = `^(0|([0-9]+(ns|us|ms|s|m|h))+)$`

// schemaDocument mirrors the file layout. Durations are strings here
// because that is how they are written in the file.
type schemaDocument struct {
	ToolHome     string              `yaml:"tool_home,omitempty" jsonschema:"description=Root directory for clones (<tool_home>/<owner>/<name>)"`
	DryRunDelay  string              `yaml:"dry_run_delay,omitempty" jsonschema:"description=Pause between the initial and terminal status in dry-run mode"`
	BatchPause   string              `yaml:"batch_pause,omitempty" jsonschema:"description=Pause between jobs of a batch sync"`
	PollInterval string              `yaml:"poll_interval,omitempty" jsonschema:"description=How often the interface drains progress events"`
	StaleAfter   string              `yaml:"stale_after,omitempty" jsonschema:"description=Age of the last full fetch after which the cache is stale"`
	AutoRefresh  *bool               `yaml:"auto_refresh,omitempty" jsonschema:"description=Refresh in the background when the cache is stale"`
	Timeouts     *schemaTimeouts     `yaml:"timeouts,omitempty" jsonschema:"description=Timeouts for external commands"`
	Exclude      []string            `yaml:"exclude,omitempty" jsonschema:"description=Patterns over owner/name for forks to hide"`
	GitHub       *schemaGitHub       `yaml:"github,omitempty" jsonschema:"description=GitHub API settings"`
	Theme        string              `yaml:"theme,omitempty" jsonschema:"enum=kanagawa,enum=gruvbox,enum=terminal,description=Color theme for the interface"`
	Keys         map[string][]string `yaml:"keys,omitempty" jsonschema:"description=Key overrides for the fork list by snake_case action name"`
}

type schemaTimeouts struct {
	Command string `yaml:"command,omitempty" jsonschema:"description=Timeout for gh and git commands"`
	Clone   string `yaml:"clone,omitempty" jsonschema:"description=Timeout for clones"`
	API     string `yaml:"api,omitempty" jsonschema:"description=Timeout for REST API calls"`
}

type schemaGitHub struct {
	APIURL   string `yaml:"api_url,omitempty" jsonschema:"format=uri,description=REST API base URL"`
	TokenEnv string `yaml:"token_env,omitempty" jsonschema:"description=Environment variable holding the API token"`
	UseAPI   *bool  `yaml:"use_api,omitempty" jsonschema:"description=Use the REST API for commits-behind lookups"`
}

// Schema reflects the configuration schema. Unknown top-level keys are
// allowed as extensions; nested sections are closed.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&schemaDocument{})
	schema.Title = "forksync configuration"
	schema.Description = "Schema for forksync config.yml / config.toml."
	schema.AdditionalProperties = jsonschema.TrueSchema

	for _, key := range []string{"dry_run_delay", "batch_pause", "poll_interval", "stale_after"} {
		setPattern(schema, key)
	}
	if def, ok := schema.Definitions["schemaTimeouts"]; ok {
		for _, key := range []string{"command", "clone", "api"} {
			setPattern(def, key)
		}
	}
	return schema
}

func setPattern(s *jsonschema.Schema, key string) {
	if s.Properties == nil {
		return
	}
	if prop, ok := s.Properties.Get(key); ok && prop != nil {
		prop.Pattern = durationPattern
	}
}

// GenerateSchema returns the configuration schema as indented JSON.
func GenerateSchema() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
