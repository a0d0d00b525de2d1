package app

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hasbyte1/go-dictcrack/hashing"
)

// EnvPrefix namespaces environment overrides, e.g. DICTCRACK_SCRYPT_N.
const EnvPrefix = "DICTCRACK"

// Config holds the settings shared by every command.  Values come from, in
// increasing precedence: DefaultConfig, the optional config file, DICTCRACK_*
// environment variables and command-line flags.
type Config struct {
	// LogLevel is one of DEBUG, INFO, WARN, ERROR or NONE.
	LogLevel string `mapstructure:"log_level"`

	// MaxCandidates stops a scan after this many attempts.  Zero means no
	// limit.
	MaxCandidates int `mapstructure:"max_candidates"`

	// TraceCandidates logs every attempted candidate at DEBUG level.  Leave
	// off unless the wordlist is not sensitive.
	TraceCandidates bool `mapstructure:"trace_candidates"`

	Scrypt ScryptConfig `mapstructure:"scrypt"`
	Bcrypt BcryptConfig `mapstructure:"bcrypt"`
	Argon2 Argon2Config `mapstructure:"argon2"`
}

// ScryptConfig carries raw scrypt parameters for hex targets and for the
// digest and encode commands.
type ScryptConfig struct {
	N      uint64 `mapstructure:"n"`
	R      uint32 `mapstructure:"r"`
	P      uint32 `mapstructure:"p"`
	KeyLen int    `mapstructure:"key_len"`

	// Salt is used verbatim; SaltHex is decoded first.  Set at most one.
	Salt    string `mapstructure:"salt"`
	SaltHex string `mapstructure:"salt_hex"`

	// MaxMemory caps the derivation working set in bytes.
	MaxMemory uint64 `mapstructure:"max_memory"`

	// SaltSet records whether a salt was supplied from any source.  An
	// empty salt is valid, so the zero value cannot tell.
	SaltSet bool `mapstructure:"-"`

	// ParamsSet records whether any of N, R, P, KeyLen or a salt was
	// supplied explicitly.  Hex targets need it to be true.
	ParamsSet bool `mapstructure:"-"`
}

type BcryptConfig struct {
	Cost int `mapstructure:"cost"`
}

type Argon2Config struct {
	Memory  uint32 `mapstructure:"memory"`
	Time    uint32 `mapstructure:"time"`
	Threads uint8  `mapstructure:"threads"`
	KeyLen  uint32 `mapstructure:"key_len"`
	SaltLen uint32 `mapstructure:"salt_len"`
}

// DefaultConfig returns a [Config] populated with the library defaults.
func DefaultConfig() Config {
	scrypt := hashing.DefaultScryptOptions()
	argon := hashing.DefaultArgon2Options()
	return Config{
		LogLevel: "WARN",
		Scrypt: ScryptConfig{
			N:         scrypt.N,
			R:         scrypt.R,
			P:         scrypt.P,
			KeyLen:    scrypt.KeyLen,
			MaxMemory: hashing.DefaultScryptMaxMemory,
		},
		Bcrypt: BcryptConfig{Cost: hashing.DefaultBcryptCost},
		Argon2: Argon2Config{
			Memory:  argon.Memory,
			Time:    argon.Time,
			Threads: argon.Threads,
			KeyLen:  argon.KeyLen,
			SaltLen: argon.SaltLen,
		},
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"log-level":         "log_level",
	"max-candidates":    "max_candidates",
	"trace-candidates":  "trace_candidates",
	"scrypt-n":          "scrypt.n",
	"scrypt-r":          "scrypt.r",
	"scrypt-p":          "scrypt.p",
	"scrypt-key-len":    "scrypt.key_len",
	"scrypt-salt":       "scrypt.salt",
	"scrypt-salt-hex":   "scrypt.salt_hex",
	"scrypt-max-memory": "scrypt.max_memory",
	"bcrypt-cost":       "bcrypt.cost",
	"argon2-memory":     "argon2.memory",
	"argon2-time":       "argon2.time",
	"argon2-threads":    "argon2.threads",
}

var scryptParamKeys = []string{
	"scrypt.n",
	"scrypt.r",
	"scrypt.p",
	"scrypt.key_len",
	"scrypt.salt",
	"scrypt.salt_hex",
}

// LoadConfig resolves the effective configuration.  path may be empty; when
// set, the file is read through fs and its extension selects the format
// (yaml, json or toml).  Only flags present in flags are bound.
func LoadConfig(fs boshsys.FileSystem, path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// No viper defaults for the raw scrypt keys: IsSet must only see
	// explicit values.  DefaultConfig fills them in before decoding.
	for _, key := range scryptParamKeys {
		_ = v.BindEnv(key)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, bosherr.WrapErrorf(err, "Binding flag '%s'", name)
				}
			}
		}
	}

	if path != "" {
		contents, err := fs.ReadFile(path)
		if err != nil {
			return Config{}, bosherr.WrapError(err, "Reading config file")
		}
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
		if err := v.ReadConfig(bytes.NewReader(contents)); err != nil {
			return Config{}, bosherr.WrapErrorf(err, "Loading config file '%s'", path)
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, bosherr.WrapError(err, "Decoding config")
	}
	config.Scrypt.SaltSet = v.IsSet("scrypt.salt") || v.IsSet("scrypt.salt_hex")
	for _, key := range scryptParamKeys {
		if v.IsSet(key) {
			config.Scrypt.ParamsSet = true
		}
	}

	return config, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("max_candidates", c.MaxCandidates)
	v.SetDefault("trace_candidates", c.TraceCandidates)
	v.SetDefault("scrypt.max_memory", c.Scrypt.MaxMemory)
	v.SetDefault("bcrypt.cost", c.Bcrypt.Cost)
	v.SetDefault("argon2.memory", c.Argon2.Memory)
	v.SetDefault("argon2.time", c.Argon2.Time)
	v.SetDefault("argon2.threads", c.Argon2.Threads)
	v.SetDefault("argon2.key_len", c.Argon2.KeyLen)
	v.SetDefault("argon2.salt_len", c.Argon2.SaltLen)
}

// Options converts the configuration into [hashing.ScryptOptions].
func (c ScryptConfig) Options() (hashing.ScryptOptions, error) {
	if c.Salt != "" && c.SaltHex != "" {
		return hashing.ScryptOptions{}, bosherr.Error("Only one of scrypt salt and salt_hex may be set")
	}
	salt := []byte(c.Salt)
	if c.SaltHex != "" {
		var err error
		salt, err = hex.DecodeString(c.SaltHex)
		if err != nil {
			return hashing.ScryptOptions{}, bosherr.WrapError(err, "Decoding scrypt salt_hex")
		}
	}
	return hashing.ScryptOptions{
		N:         c.N,
		R:         c.R,
		P:         c.P,
		Salt:      salt,
		KeyLen:    c.KeyLen,
		MaxMemory: c.MaxMemory,
	}, nil
}

func (c Argon2Config) Options() hashing.Argon2Options {
	return hashing.Argon2Options{
		Memory:  c.Memory,
		Time:    c.Time,
		Threads: c.Threads,
		KeyLen:  c.KeyLen,
		SaltLen: c.SaltLen,
	}
}
