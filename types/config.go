package types

// AppConfig represents the application configuration loaded from config file,
// environment and flags (later wins).
type AppConfig struct {
	Port               int    `yaml:"port" env:"PORT"`
	UploadDir          string `yaml:"uploadDir" env:"UPLOAD_DIR"`
	MaxFileSize        int64  `yaml:"maxFileSize" env:"MAX_FILE_SIZE"`
	MaxFilesPerRequest int    `yaml:"maxFilesPerRequest" env:"MAX_FILES_PER_REQUEST"`
	ConcurrentWrites   int    `yaml:"concurrentWrites" env:"CONCURRENT_WRITES"`
	ConvertWorkers     int    `yaml:"convertWorkers" env:"CONVERT_WORKERS"`
	AllowUnknownTypes  bool   `yaml:"allowUnknownTypes" env:"ALLOW_UNKNOWN_TYPES"`
	RateLimitRPS       int    `yaml:"rateLimitRPS" env:"RATE_LIMIT_RPS"`
	ShareURL           string `yaml:"shareURL,omitempty" env:"SHARE_URL"`

	// Extension policy. Only settable via config file; defaults cover the
	// formats the service has always accepted.
	ImageExtensions    []string `yaml:"imageExtensions,omitempty"`
	DocumentExtensions []string `yaml:"documentExtensions,omitempty"`
	MediaExtensions    []string `yaml:"mediaExtensions,omitempty"`
	ArchiveExtensions  []string `yaml:"archiveExtensions,omitempty"`
	// ConvertExtensions lists image extensions converted to JPEG after upload.
	ConvertExtensions []string `yaml:"convertExtensions,omitempty"`
}

// Config holds runtime overrides from CLI flags.
type Config struct {
	Log           string // log mode: dev|prod|none
	UseConfigPath string
	UseUploadDir  string
	UsePort       int
	UseShareURL   string // absolute URL encoded into the share QR code
	SkipConvert   bool   // if true, disable post-upload image conversion
}
