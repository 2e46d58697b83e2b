package tool

import (
	"flag"

	"github.com/moyoez/fileshare-go/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseUploadDir, "useUploadDir", "", "override upload folder")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override listen port")
	flag.StringVar(&cfg.UseShareURL, "useShareURL", "", "absolute URL encoded into the share QR code")
	flag.BoolVar(&cfg.SkipConvert, "skipConvert", false, "disable post-upload image conversion")
	flag.Parse()
	return cfg
}
