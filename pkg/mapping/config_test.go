package mapping

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := newConfig(viper.New())

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, cfg.DefaultStatus)
	assert.False(t, cfg.IncludeStackTrace)
	assert.Empty(t, cfg.TypeBaseURI)
}

func TestNewConfig_FromYAML(t *testing.T) {
	v := loadViper(t, `
problem:
  include-stack-trace: true
  type-base-uri: https://errors.example.com/
  default-status: 502
  mappings:
    not-found:
      title: Resource Not Found
    internal:
      expose-detail: true
`)

	cfg, err := newConfig(v)

	require.NoError(t, err)
	assert.True(t, cfg.IncludeStackTrace)
	assert.Equal(t, "https://errors.example.com/", cfg.TypeBaseURI)
	assert.Equal(t, http.StatusBadGateway, cfg.DefaultStatus)
	require.Contains(t, cfg.Mappings, "not-found")
	assert.Equal(t, "Resource Not Found", cfg.Mappings["not-found"].Title)
	require.NotNil(t, cfg.Mappings["internal"].ExposeDetail)
	assert.True(t, *cfg.Mappings["internal"].ExposeDetail)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{DefaultStatus: 500}},
		{name: "status too low", cfg: Config{DefaultStatus: 99}, wantErr: "default-status 99"},
		{name: "status too high", cfg: Config{DefaultStatus: 600}, wantErr: "default-status 600"},
		{name: "relative base uri", cfg: Config{DefaultStatus: 500, TypeBaseURI: "/errors/"}, wantErr: "must be an absolute URI"},
		{name: "unknown mapping", cfg: Config{DefaultStatus: 500, Mappings: map[string]RuleConfig{"teapot": {Status: 418}}}, wantErr: `unknown mapping "teapot"`},
		{name: "unknown kind name", cfg: Config{DefaultStatus: 500, Mappings: map[string]RuleConfig{"unknown": {Status: 418}}}, wantErr: `unknown mapping "unknown"`},
		{name: "bad override status", cfg: Config{DefaultStatus: 500, Mappings: map[string]RuleConfig{"conflict": {Status: 42}}}, wantErr: "status 42"},
		{name: "bad slug", cfg: Config{DefaultStatus: 500, Mappings: map[string]RuleConfig{"conflict": {Slug: "Not A Slug"}}}, wantErr: "kebab-case"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	for kind, rule := range table {
		assert.NoError(t, rule.validate(), kind.String())
		assert.Equal(t, kind.String(), rule.Slug)
	}
	assert.Equal(t, "Validation Failure", table[failure.KindValidation].Title)
	assert.False(t, table[failure.KindInternal].ExposeDetail)
}
