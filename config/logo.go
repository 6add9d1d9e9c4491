package config

import "github.com/spf13/viper"

// Logo locates university logo assets. AssetsDir is the local directory
// serving BasePath; when empty, candidates are probed over HTTP against
// AssetsURL.
type Logo struct {
	BasePath   string `json:"base_path" yaml:"base_path"`
	Default    string `json:"default" yaml:"default"`
	AliasesURL string `json:"aliases_url" yaml:"aliases_url"`
	AssetsDir  string `json:"assets_dir" yaml:"assets_dir"`
	AssetsURL  string `json:"assets_url" yaml:"assets_url"`
}

func getLogoConfig(v *viper.Viper) *Logo {
	return &Logo{
		BasePath:   getStringOrDefault(v, "logo.base_path", "/images/uni_images/uni_logos"),
		Default:    getStringOrDefault(v, "logo.default", "/images/logo/logo.svg"),
		AliasesURL: v.GetString("logo.aliases_url"),
		AssetsDir:  v.GetString("logo.assets_dir"),
		AssetsURL:  v.GetString("logo.assets_url"),
	}
}
