package app_test

import (
	"errors"
	"os"

	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	. "github.com/hasbyte1/go-dictcrack/app"
	"github.com/hasbyte1/go-dictcrack/hashing"
)

var _ = Describe("Config", func() {
	var fs *fakesys.FakeFileSystem

	BeforeEach(func() {
		fs = fakesys.NewFakeFileSystem()
	})

	Describe("DefaultConfig", func() {
		It("uses the library defaults", func() {
			config := DefaultConfig()
			Expect(config.LogLevel).To(Equal("WARN"))
			Expect(config.MaxCandidates).To(Equal(0))
			Expect(config.Scrypt.N).To(Equal(hashing.DefaultScryptN))
			Expect(config.Scrypt.KeyLen).To(Equal(hashing.DefaultScryptKeyLen))
			Expect(config.Scrypt.MaxMemory).To(Equal(hashing.DefaultScryptMaxMemory))
			Expect(config.Bcrypt.Cost).To(Equal(hashing.DefaultBcryptCost))
			Expect(config.Argon2.Options()).To(Equal(hashing.DefaultArgon2Options()))
		})
	})

	Describe("LoadConfig", func() {
		It("returns the defaults without a file, env or flags", func() {
			config, err := LoadConfig(fs, "", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(config).To(Equal(DefaultConfig()))
			Expect(config.Scrypt.SaltSet).To(BeFalse())
			Expect(config.Scrypt.ParamsSet).To(BeFalse())
		})

		It("reads a yaml file through the file system", func() {
			err := fs.WriteFileString("/etc/dictcrack.yml", `
max_candidates: 10
trace_candidates: true
scrypt:
  n: 1024
  salt: pepper
`)
			Expect(err).ToNot(HaveOccurred())

			config, err := LoadConfig(fs, "/etc/dictcrack.yml", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.MaxCandidates).To(Equal(10))
			Expect(config.TraceCandidates).To(BeTrue())
			Expect(config.Scrypt.N).To(Equal(uint64(1024)))
			Expect(config.Scrypt.R).To(Equal(hashing.DefaultScryptR))
			Expect(config.Scrypt.Salt).To(Equal("pepper"))
			Expect(config.Scrypt.SaltSet).To(BeTrue())
			Expect(config.Scrypt.ParamsSet).To(BeTrue())
		})

		It("reads a json file", func() {
			err := fs.WriteFileString("/dictcrack.json", `{"log_level": "DEBUG", "bcrypt": {"cost": 4}}`)
			Expect(err).ToNot(HaveOccurred())

			config, err := LoadConfig(fs, "/dictcrack.json", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.LogLevel).To(Equal("DEBUG"))
			Expect(config.Bcrypt.Cost).To(Equal(4))
		})

		It("returns an error when the file cannot be read", func() {
			err := fs.WriteFileString("/dictcrack.yml", "")
			Expect(err).ToNot(HaveOccurred())
			fs.RegisterReadFileError("/dictcrack.yml", errors.New("fake-read-error"))

			_, err = LoadConfig(fs, "/dictcrack.yml", nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Reading config file"))
			Expect(err.Error()).To(ContainSubstring("fake-read-error"))
		})

		It("returns an error when the file cannot be parsed", func() {
			err := fs.WriteFileString("/dictcrack.json", `{"max_candidates": `)
			Expect(err).ToNot(HaveOccurred())

			_, err = LoadConfig(fs, "/dictcrack.json", nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Loading config file '/dictcrack.json'"))
		})

		Context("with environment variables", func() {
			BeforeEach(func() {
				os.Setenv("DICTCRACK_SCRYPT_N", "2048")
				os.Setenv("DICTCRACK_MAX_CANDIDATES", "7")
			})

			AfterEach(func() {
				os.Unsetenv("DICTCRACK_SCRYPT_N")
				os.Unsetenv("DICTCRACK_MAX_CANDIDATES")
				os.Unsetenv("DICTCRACK_SCRYPT_SALT_HEX")
			})

			It("overrides the config file", func() {
				err := fs.WriteFileString("/dictcrack.yml", "scrypt:\n  n: 1024\n")
				Expect(err).ToNot(HaveOccurred())

				config, err := LoadConfig(fs, "/dictcrack.yml", nil)
				Expect(err).ToNot(HaveOccurred())
				Expect(config.Scrypt.N).To(Equal(uint64(2048)))
				Expect(config.MaxCandidates).To(Equal(7))
			})

			It("marks the salt as set", func() {
				os.Setenv("DICTCRACK_SCRYPT_SALT_HEX", "00ff")

				config, err := LoadConfig(fs, "", nil)
				Expect(err).ToNot(HaveOccurred())
				Expect(config.Scrypt.SaltHex).To(Equal("00ff"))
				Expect(config.Scrypt.SaltSet).To(BeTrue())
			})

			It("marks scrypt parameters as set without a salt", func() {
				config, err := LoadConfig(fs, "", nil)
				Expect(err).ToNot(HaveOccurred())
				Expect(config.Scrypt.N).To(Equal(uint64(2048)))
				Expect(config.Scrypt.R).To(Equal(hashing.DefaultScryptR))
				Expect(config.Scrypt.ParamsSet).To(BeTrue())
				Expect(config.Scrypt.SaltSet).To(BeFalse())
			})

			It("is overridden by flags", func() {
				flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
				flags.Uint64("scrypt-n", 16384, "")
				flags.Int("max-candidates", 0, "")
				Expect(flags.Parse([]string{"--scrypt-n", "4096"})).To(Succeed())

				config, err := LoadConfig(fs, "", flags)
				Expect(err).ToNot(HaveOccurred())
				Expect(config.Scrypt.N).To(Equal(uint64(4096)))
				Expect(config.MaxCandidates).To(Equal(7))
			})
		})

		It("does not treat an unchanged salt flag as set", func() {
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.String("scrypt-salt", "", "")
			Expect(flags.Parse(nil)).To(Succeed())

			config, err := LoadConfig(fs, "", flags)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.Scrypt.SaltSet).To(BeFalse())
		})

		It("treats a changed cost flag as explicit scrypt parameters", func() {
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.Uint64("scrypt-n", hashing.DefaultScryptN, "")
			flags.Int("scrypt-key-len", hashing.DefaultScryptKeyLen, "")
			Expect(flags.Parse([]string{"--scrypt-key-len", "16"})).To(Succeed())

			config, err := LoadConfig(fs, "", flags)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.Scrypt.KeyLen).To(Equal(16))
			Expect(config.Scrypt.N).To(Equal(hashing.DefaultScryptN))
			Expect(config.Scrypt.ParamsSet).To(BeTrue())
			Expect(config.Scrypt.SaltSet).To(BeFalse())
		})

		It("does not treat unchanged cost flags as explicit scrypt parameters", func() {
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.Uint64("scrypt-n", hashing.DefaultScryptN, "")
			Expect(flags.Parse(nil)).To(Succeed())

			config, err := LoadConfig(fs, "", flags)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.Scrypt.ParamsSet).To(BeFalse())
		})

		It("treats an explicitly empty salt flag as set", func() {
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.String("scrypt-salt", "", "")
			Expect(flags.Parse([]string{"--scrypt-salt="})).To(Succeed())

			config, err := LoadConfig(fs, "", flags)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.Scrypt.SaltSet).To(BeTrue())
		})
	})

	Describe("ScryptConfig.Options", func() {
		It("uses the salt verbatim", func() {
			opts, err := ScryptConfig{N: 16, R: 1, P: 1, KeyLen: 32, Salt: "salt"}.Options()
			Expect(err).ToNot(HaveOccurred())
			Expect(opts.Salt).To(Equal([]byte("salt")))
			Expect(opts.N).To(Equal(uint64(16)))
		})

		It("decodes a hex salt", func() {
			opts, err := ScryptConfig{SaltHex: "00ff10"}.Options()
			Expect(err).ToNot(HaveOccurred())
			Expect(opts.Salt).To(Equal([]byte{0x00, 0xff, 0x10}))
		})

		It("rejects invalid hex", func() {
			_, err := ScryptConfig{SaltHex: "zz"}.Options()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Decoding scrypt salt_hex"))
		})

		It("rejects both salts at once", func() {
			_, err := ScryptConfig{Salt: "a", SaltHex: "61"}.Options()
			Expect(err).To(HaveOccurred())
		})
	})
})
