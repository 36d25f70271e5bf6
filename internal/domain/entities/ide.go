package entities

import "fmt"

// ProductCode identifies an IDE edition
type ProductCode string

// Known product codes
const (
	ProductIntellijCommunity ProductCode = "IC"
	ProductIntellijUltimate  ProductCode = "IU"
	ProductPyCharm           ProductCode = "PY"
	ProductPyCharmCommunity  ProductCode = "PC"
	ProductCLion             ProductCode = "CL"
	ProductRider             ProductCode = "RD"
	ProductGoLand            ProductCode = "GO"
	ProductPhpStorm          ProductCode = "PS"
	ProductWebStorm          ProductCode = "WS"
	ProductRubyMine          ProductCode = "RM"
	ProductDataGrip          ProductCode = "DB"
	ProductJPS               ProductCode = "JPS"
)

// DefaultProductCode is used when an identifier carries no product prefix
const DefaultProductCode = ProductIntellijCommunity

var productCodes = map[ProductCode]struct{}{
	ProductIntellijCommunity: {},
	ProductIntellijUltimate:  {},
	ProductPyCharm:           {},
	ProductPyCharmCommunity:  {},
	ProductCLion:             {},
	ProductRider:             {},
	ProductGoLand:            {},
	ProductPhpStorm:          {},
	ProductWebStorm:          {},
	ProductRubyMine:          {},
	ProductDataGrip:          {},
	ProductJPS:               {},
}

// IsKnownProductCode reports whether code belongs to the closed set of product codes
func IsKnownProductCode(code string) bool {
	_, ok := productCodes[ProductCode(code)]
	return ok
}

// IdeSpec is a parsed IDE identifier such as "IC-2020.2"
type IdeSpec struct {
	Type    ProductCode
	Version string
}

// Key returns the cache key "{type}-{version}"
func (s IdeSpec) Key() string {
	return fmt.Sprintf("%s-%s", s.Type, s.Version)
}

func (s IdeSpec) String() string {
	return s.Key()
}

// Channel is a release-maturity track an IDE build may be published under
type Channel string

// Download channels
const (
	ChannelRelease Channel = "release"
	ChannelRC      Channel = "rc"
	ChannelEAP     Channel = "eap"
	ChannelBeta    Channel = "beta"
)

// Channels returns the fixed fallback order used when downloading an IDE
func Channels() []Channel {
	return []Channel{ChannelRelease, ChannelRC, ChannelEAP, ChannelBeta}
}
