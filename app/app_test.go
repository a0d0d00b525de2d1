package app_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/hasbyte1/go-dictcrack/app"
	"github.com/hasbyte1/go-dictcrack/hashing"
)

const (
	md5OfDef    = "4ed9407630eb1000c0f6b63842defa7d"
	hunter2Hex  = "ac48b1241e0d2573a83921ebacd9fa9e907a82f631321e0590558ca548f94af0"
	hunter2Hash = "$scrypt$ln=4,r=1,p=1$c2FsdA==$rEixJB4NJXOoOSHrrNn6npB6gvYxMh4FkFWMpUj5SvA="
)

var fastScryptFlags = []string{"--scrypt-n", "16", "--scrypt-r", "1", "--scrypt-p", "1", "--scrypt-key-len", "32"}

type fakePrompter struct {
	secret string
	err    error
	asked  bool
}

func (p *fakePrompter) ReadSecret(string) (string, error) {
	p.asked = true
	return p.secret, p.err
}

var _ = Describe("dictcrack", func() {
	var (
		deps     Deps
		stdout   *bytes.Buffer
		stderr   *bytes.Buffer
		prompter *fakePrompter
		dir      string
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		prompter = &fakePrompter{err: ErrNotTerminal}
		deps = Deps{
			Stdout:   stdout,
			Stderr:   stderr,
			Prompter: prompter,
			NewRunID: func() string { return "fake-run-id" },
		}

		var err error
		dir, err = os.MkdirTemp("", "dictcrack")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	writeWordlist := func(contents string) string {
		path := filepath.Join(dir, "words.txt")
		Expect(os.WriteFile(path, []byte(contents), 0o600)).To(Succeed())
		return path
	}

	run := func(args ...string) error {
		cmd := New(deps)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	Describe("crack", func() {
		var words string

		BeforeEach(func() {
			words = writeWordlist("abc\ndef\nghi\n")
		})

		It("reports the first matching line", func() {
			err := run("crack", "-f", words, "-m", "md5", "--hash", md5OfDef)
			Expect(err).ToNot(HaveOccurred())
			Expect(ExitCode(err)).To(Equal(ExitOK))

			Expect(stdout.String()).To(ContainSubstring("Run:       fake-run-id"))
			Expect(stdout.String()).To(ContainSubstring("Scheme:    md5 (digest)"))
			Expect(stdout.String()).To(ContainSubstring("Match found at line 2: def"))
			Expect(stdout.String()).To(ContainSubstring("Attempts:  2 (skipped 0, failed 0)"))
			Expect(stdout.String()).To(ContainSubstring("Strength:  "))
		})

		It("matches an uppercase target", func() {
			err := run("crack", "-f", words, "-m", "MD5", "--hash", strings.ToUpper(md5OfDef))
			Expect(err).ToNot(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Match found at line 2: def"))
		})

		It("returns ErrNoMatch when the wordlist is exhausted", func() {
			err := run("crack", "-f", words, "-m", "sha1", "--hash", strings.Repeat("0", 40))
			Expect(err).To(MatchError(ErrNoMatch))
			Expect(ExitCode(err)).To(Equal(ExitNoMatch))
			Expect(stdout.String()).To(ContainSubstring("No match found."))
			Expect(stdout.String()).To(ContainSubstring("Attempts:  3"))
		})

		It("stops at --max-candidates", func() {
			err := run("crack", "-f", words, "-m", "md5", "--hash", md5OfDef, "--max-candidates", "1")
			Expect(err).To(MatchError(ErrNoMatch))
			Expect(stdout.String()).To(ContainSubstring("Attempts:  1"))
			Expect(stdout.String()).To(ContainSubstring("Stopped at the candidate limit"))
		})

		It("writes the partial report when the wordlist fails mid-scan", func() {
			err := run("crack", "-f", dir, "-m", "md5", "--hash", md5OfDef)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Scanning wordlist"))
			Expect(ExitCode(err)).To(Equal(ExitError))

			Expect(stdout.String()).To(ContainSubstring("Run:       fake-run-id"))
			Expect(stdout.String()).To(ContainSubstring("No match found."))
			Expect(stdout.String()).To(ContainSubstring("Attempts:  0"))
		})

		It("reads --max-candidates from the environment", func() {
			os.Setenv("DICTCRACK_MAX_CANDIDATES", "1")
			defer os.Unsetenv("DICTCRACK_MAX_CANDIDATES")

			err := run("crack", "-f", words, "-m", "md5", "--hash", md5OfDef)
			Expect(err).To(MatchError(ErrNoMatch))
		})

		It("skips invalid UTF-8 lines with a warning", func() {
			words = writeWordlist("abc\n\xff\xfe\ndef\n")

			err := run("crack", "-f", words, "-m", "md5", "--hash", md5OfDef)
			Expect(err).ToNot(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Match found at line 3: def"))
			Expect(stdout.String()).To(ContainSubstring("Warning:   line 2: invalid utf-8"))
			Expect(stderr.String()).To(ContainSubstring("Skipping line 2"))
		})

		It("detects an encoded scrypt target", func() {
			words = writeWordlist("password\nhunter2\n")

			err := run("crack", "-f", words, "--hash", hunter2Hash)
			Expect(err).ToNot(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("scrypt-encoded"))
			Expect(stdout.String()).To(ContainSubstring("Match found at line 2: hunter2"))
		})

		It("cracks a raw scrypt target with explicit parameters", func() {
			words = writeWordlist("password\nhunter2\n")

			args := append([]string{"crack", "-f", words, "-m", "scrypt", "--hash", hunter2Hex, "--scrypt-salt", "salt"}, fastScryptFlags...)
			err := run(args...)
			Expect(err).ToNot(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Match found at line 2: hunter2"))
		})

		It("accepts cost flags without a salt as explicit parameters", func() {
			err := run(append([]string{"digest", "-m", "scrypt", "def"}, fastScryptFlags...)...)
			Expect(err).ToNot(HaveOccurred())
			target := strings.TrimSpace(stdout.String())
			stdout.Reset()

			err = run(append([]string{"crack", "-f", words, "-m", "scrypt", "--hash", target}, fastScryptFlags...)...)
			Expect(err).ToNot(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Match found at line 2: def"))
		})

		It("takes scrypt parameters from a config file", func() {
			words = writeWordlist("hunter2\n")
			config := filepath.Join(dir, "dictcrack.yml")
			Expect(os.WriteFile(config, []byte("scrypt:\n  n: 16\n  r: 1\n  p: 1\n  salt_hex: 73616c74\n"), 0o600)).To(Succeed())

			err := run("--config", config, "crack", "-f", words, "-m", "scrypt", "--hash", hunter2Hex)
			Expect(err).ToNot(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Match found at line 1: hunter2"))
		})

		It("requires a salt for raw scrypt targets", func() {
			err := run("crack", "-f", words, "-m", "scrypt", "--hash", hunter2Hex)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Resolving target"))
			Expect(err.Error()).To(ContainSubstring("raw scrypt targets need explicit parameters"))
			Expect(ExitCode(err)).To(Equal(ExitError))
		})

		It("rejects a malformed encoded target before reading the wordlist", func() {
			deps.FS = fakesys.NewFakeFileSystem()

			err := run("crack", "-f", "/missing.txt", "--hash", "$scrypt$ln=14,r=8$c2FsdA==$AAAA")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(`missing parameter "p"`))
			Expect(err.Error()).ToNot(ContainSubstring("Opening wordlist"))
		})

		It("rejects a target of the wrong length", func() {
			err := run("crack", "-f", words, "-m", "sha256", "--hash", md5OfDef)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("expected 64 hex characters"))
		})

		It("requires a scheme for hex targets", func() {
			err := run("crack", "-f", words, "--hash", md5OfDef)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("scheme must be specified"))
		})

		It("returns an error when the wordlist cannot be opened", func() {
			fs := fakesys.NewFakeFileSystem()
			fs.OpenFileErr = errors.New("fake-open-file-error")
			deps.FS = fs

			err := run("crack", "-f", "/words.txt", "-m", "md5", "--hash", md5OfDef)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Opening wordlist '/words.txt'"))
			Expect(err.Error()).To(ContainSubstring("fake-open-file-error"))
		})

		It("requires --file", func() {
			err := run("crack", "-m", "md5", "--hash", md5OfDef)
			Expect(err).To(HaveOccurred())
		})

		Context("without --hash", func() {
			It("prompts for the target", func() {
				prompter.secret = md5OfDef
				prompter.err = nil

				err := run("crack", "-f", words, "-m", "md5")
				Expect(err).ToNot(HaveOccurred())
				Expect(prompter.asked).To(BeTrue())
				Expect(stdout.String()).To(ContainSubstring("Match found at line 2: def"))
			})

			It("fails when there is no terminal", func() {
				err := run("crack", "-f", words, "-m", "md5")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("pass --hash"))
			})

			It("wraps prompt failures", func() {
				prompter.err = errors.New("fake-prompt-error")

				err := run("crack", "-f", words, "-m", "md5")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Reading target hash"))
			})
		})

		Describe("logging", func() {
			It("does not log candidates by default", func() {
				err := run("--log-level", "DEBUG", "crack", "-f", words, "-m", "md5", "--hash", md5OfDef)
				Expect(err).ToNot(HaveOccurred())
				Expect(stderr.String()).To(ContainSubstring("Match on line 2"))
				Expect(stderr.String()).ToNot(ContainSubstring(`"abc"`))
			})

			It("traces candidates on request", func() {
				err := run("--log-level", "DEBUG", "crack", "-f", words, "-m", "md5", "--hash", md5OfDef, "--trace-candidates")
				Expect(err).ToNot(HaveOccurred())
				Expect(stderr.String()).To(ContainSubstring(`Line 1 "abc": matched=false`))
			})

			It("rejects an unknown log level", func() {
				err := run("--log-level", "LOUD", "crack", "-f", words, "-m", "md5", "--hash", md5OfDef)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Parsing log level 'LOUD'"))
			})
		})
	})

	Describe("digest", func() {
		It("prints one hex digest per word", func() {
			err := run("digest", "-m", "md5", "abc", "")
			Expect(err).ToNot(HaveOccurred())
			Expect(stdout.String()).To(Equal("900150983cd24fb0d6963f7d28e17f72\nd41d8cd98f00b204e9800998ecf8427e\n"))
		})

		It("derives raw scrypt", func() {
			args := append([]string{"digest", "-m", "scrypt", "--scrypt-salt", "salt", "hunter2"}, fastScryptFlags...)
			Expect(run(args...)).To(Succeed())
			Expect(stdout.String()).To(Equal(hunter2Hex + "\n"))
		})

		It("reports scrypt derivation limits", func() {
			args := append([]string{"digest", "-m", "scrypt", "--scrypt-max-memory", "1024", "x"}, fastScryptFlags...)
			err := run(args...)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Deriving scrypt"))
		})

		It("refuses verification-only schemes", func() {
			err := run("digest", "-m", "bcrypt", "abc")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("dictcrack encode"))
		})

		It("rejects unknown schemes", func() {
			err := run("digest", "-m", "whirlpool", "abc")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Selecting scheme"))
		})
	})

	Describe("encode", func() {
		encoded := func() string { return strings.TrimSpace(stdout.String()) }

		It("encodes scrypt with the configured salt", func() {
			args := append([]string{"encode", "--scrypt-salt", "salt", "hunter2"}, fastScryptFlags...)
			Expect(run(args...)).To(Succeed())
			Expect(encoded()).To(Equal(hunter2Hash))
		})

		It("generates a salt when none is configured", func() {
			args := append([]string{"encode", "hunter2"}, fastScryptFlags...)
			Expect(run(args...)).To(Succeed())

			e, err := hashing.ParseEncoded(encoded())
			Expect(err).ToNot(HaveOccurred())
			Expect(e.Salt).To(HaveLen(16))

			ok, err := hashing.VerifyEncoded(encoded(), []byte("hunter2"))
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("encodes bcrypt", func() {
			Expect(run("encode", "-m", "bcrypt", "--bcrypt-cost", "4", "trustno1")).To(Succeed())

			s, err := hashing.NewBcryptScheme(encoded())
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Cost()).To(Equal(4))
			Expect(s.Matches([]byte("trustno1"))).To(BeTrue())
		})

		It("encodes argon2id", func() {
			Expect(run("encode", "-m", "argon2id", "--argon2-memory", "64", "--argon2-time", "1", "--argon2-threads", "1", "dragon")).To(Succeed())
			Expect(encoded()).To(HavePrefix("$argon2id$v=19$m=64,t=1,p=1$"))

			s, err := hashing.NewArgon2Scheme(encoded())
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Matches([]byte("dragon"))).To(BeTrue())
		})

		It("refuses fixed digests", func() {
			err := run("encode", "-m", "md5", "abc")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("dictcrack digest"))
		})
	})

	Describe("schemes", func() {
		It("lists every scheme", func() {
			Expect(run("schemes")).To(Succeed())
			for _, name := range []string{"md2", "md5", "sha3-256", "scrypt", "bcrypt", "argon2id"} {
				Expect(stdout.String()).To(ContainSubstring(name))
			}
			Expect(stdout.String()).To(ContainSubstring("digest, 16 bytes"))
		})
	})

	Describe("ExitCode", func() {
		It("maps errors to exit codes", func() {
			Expect(ExitCode(nil)).To(Equal(ExitOK))
			Expect(ExitCode(ErrNoMatch)).To(Equal(ExitNoMatch))
			Expect(ExitCode(errors.New("fake-error"))).To(Equal(ExitError))
		})
	})
})
