package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
)

func TestParseIdeSpec(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantType    entities.ProductCode
		wantVersion string
	}{
		{"community with version", "IC-2020.2", entities.ProductIntellijCommunity, "2020.2"},
		{"ultimate with build", "IU-203.1234.56", entities.ProductIntellijUltimate, "203.1234.56"},
		{"rider", "RD-2021.1", entities.ProductRider, "2021.1"},
		{"jps", "JPS-2020.3", entities.ProductJPS, "2020.3"},
		{"bare marketing version", "2020.2", entities.ProductIntellijCommunity, "2020.2"},
		{"bare build number", "203.1234.56", entities.ProductIntellijCommunity, "203.1234.56"},
		{"unknown prefix kept verbatim", "XX-2020.2", entities.ProductIntellijCommunity, "XX-2020.2"},
		{"snapshot suffix", "2020.3-SNAPSHOT", entities.ProductIntellijCommunity, "2020.3-SNAPSHOT"},
		{"version with dash after code", "IC-2021.1-EAP-SNAPSHOT", entities.ProductIntellijCommunity, "2021.1-EAP-SNAPSHOT"},
		{"surrounding whitespace", "  PY-2020.3 ", entities.ProductPyCharm, "2020.3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseIdeSpec(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, spec.Type)
			assert.Equal(t, tt.wantVersion, spec.Version)
		})
	}
}

func TestParseIdeSpec_RoundTripsEveryProductCode(t *testing.T) {
	codes := []entities.ProductCode{
		entities.ProductIntellijCommunity, entities.ProductIntellijUltimate, entities.ProductPyCharm,
		entities.ProductPyCharmCommunity, entities.ProductCLion, entities.ProductRider, entities.ProductGoLand,
		entities.ProductPhpStorm, entities.ProductWebStorm, entities.ProductRubyMine, entities.ProductDataGrip,
		entities.ProductJPS,
	}
	versions := []string{"2020.2", "203.1234.56", "2021.1.3", "212-EAP-SNAPSHOT"}

	for _, code := range codes {
		for _, version := range versions {
			spec, err := ParseIdeSpec(string(code) + "-" + version)
			require.NoError(t, err)
			assert.Equal(t, entities.IdeSpec{Type: code, Version: version}, spec)
		}
	}
}

func TestParseIdeSpec_EmptyVersion(t *testing.T) {
	for _, raw := range []string{"", "   ", "IC-", "IU-"} {
		_, err := ParseIdeSpec(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

		var specErr *domainerrors.InvalidVersionSpecError
		require.ErrorAs(t, err, &specErr)
		assert.Equal(t, raw, specErr.Raw)
	}
}

func TestParseIdeSpecs_StopsAtFirstInvalid(t *testing.T) {
	_, err := ParseIdeSpecs([]string{"IC-2020.2", "IU-", "2020.3"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	specs, err := ParseIdeSpecs([]string{"IC-2020.2", "2020.3"})
	require.NoError(t, err)
	assert.Len(t, specs, 2)
}

func TestIsBuildNumber(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"203.1234.56", true},
		{"203.1234", true},
		{"211.7628.21", true},
		{"2020.2", false},
		{"2020.2.3", false},
		{"203", false},
		{"20.1.2", false},
		{"203.1234.56-EAP", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBuildNumber(tt.version))
		})
	}
}

func TestVersionQueryParam(t *testing.T) {
	assert.Equal(t, "build", VersionQueryParam("203.1234.56"))
	assert.Equal(t, "version", VersionQueryParam("2020.2"))
}
