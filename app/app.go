// Package app wires the dictcrack command line: configuration, logging,
// file access and the crack, digest, encode and schemes commands.
package app

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hasbyte1/go-dictcrack/crack"
	"github.com/hasbyte1/go-dictcrack/hashing"
	"github.com/hasbyte1/go-dictcrack/wordlist"
)

const appLogTag = "app"

// ErrNoMatch is returned by the crack command when the wordlist was
// exhausted (or truncated) without recovering the password.
var ErrNoMatch = errors.New("no match found")

// Exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitNoMatch = 2
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNoMatch):
		return ExitNoMatch
	default:
		return ExitError
	}
}

// Deps are the process collaborators.  Zero fields are filled with the OS
// defaults.
type Deps struct {
	// FS is used for wordlists and config files.  Nil selects the OS file
	// system.
	FS boshsys.FileSystem

	Stdout io.Writer
	Stderr io.Writer

	// Prompter reads the target hash when --hash is omitted.
	Prompter Prompter

	// NewRunID labels each crack run.  Nil selects a random UUID.
	NewRunID func() string
}

type app struct {
	deps       Deps
	configPath string
	config     Config
	logger     boshlog.Logger
	fs         boshsys.FileSystem
}

// New builds the root "dictcrack" command.
func New(deps Deps) *cobra.Command {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Prompter == nil {
		deps.Prompter = NewTerminalPrompter()
	}
	if deps.NewRunID == nil {
		deps.NewRunID = func() string { return uuid.NewString() }
	}
	a := &app{deps: deps}

	root := &cobra.Command{
		Use:   "dictcrack",
		Short: "Recover a password from its hash with a wordlist",
		Long: `dictcrack hashes every line of a wordlist with the selected scheme and
stops at the first line that reproduces the target hash.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", DefaultConfig().LogLevel, "Log level: DEBUG, INFO, WARN, ERROR or NONE")

	root.AddCommand(
		newCrackCmd(a),
		newDigestCmd(a),
		newEncodeCmd(a),
		newSchemesCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger and file system for
// the command about to run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config, err := LoadConfig(a.bootstrapFS(), a.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	level, err := boshlog.Levelify(config.LogLevel)
	if err != nil {
		return bosherr.WrapErrorf(err, "Parsing log level '%s'", config.LogLevel)
	}

	a.config = config
	a.logger = boshlog.NewWriterLogger(level, a.deps.Stderr)
	a.fs = a.deps.FS
	if a.fs == nil {
		a.fs = boshsys.NewOsFileSystem(a.logger)
	}

	a.logger.Debug(appLogTag, "Running '%s'", cmd.CommandPath())
	return nil
}

func (a *app) bootstrapFS() boshsys.FileSystem {
	if a.deps.FS != nil {
		return a.deps.FS
	}
	return boshsys.NewOsFileSystem(boshlog.NewLogger(boshlog.LevelNone))
}

func addScryptFlags(flags *pflag.FlagSet) {
	d := DefaultConfig().Scrypt
	flags.Uint64("scrypt-n", d.N, "scrypt CPU/memory cost N (power of two)")
	flags.Uint32("scrypt-r", d.R, "scrypt block size r")
	flags.Uint32("scrypt-p", d.P, "scrypt parallelism p")
	flags.Int("scrypt-key-len", d.KeyLen, "scrypt output length in bytes")
	flags.String("scrypt-salt", "", "scrypt salt, used verbatim")
	flags.String("scrypt-salt-hex", "", "scrypt salt, hex encoded")
	flags.Uint64("scrypt-max-memory", d.MaxMemory, "Refuse scrypt derivations needing more bytes than this")
}

// ──────────────────────────────────────────────────────────────────────────────
// crack
// ──────────────────────────────────────────────────────────────────────────────

type crackCmd struct {
	*app
	file string
	hash string
	mode string
}

func newCrackCmd(a *app) *cobra.Command {
	c := &crackCmd{app: a}
	cmd := &cobra.Command{
		Use:   "crack -f FILE [--hash HASH] [-m MODE]",
		Short: "Search a wordlist for the password behind a hash",
		Example: `
  dictcrack crack -f rockyou.txt -m md5 --hash 5f4dcc3b5aa765d61d8327deb882cf99
  dictcrack crack -f words.txt --hash '$scrypt$ln=14,r=8,p=1$c2FsdA==$...'
  dictcrack crack -f words.txt -m scrypt --scrypt-salt pepper --hash 9f2c...
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&c.file, "file", "f", "", "Wordlist, one candidate per line")
	cmd.Flags().StringVar(&c.hash, "hash", "", "Target hash; prompted for when omitted")
	cmd.Flags().StringVarP(&c.mode, "mode", "m", "", "Hash scheme (see 'dictcrack schemes'); detected for $-prefixed hashes")
	cmd.Flags().Int("max-candidates", 0, "Stop after this many attempts (0 means no limit)")
	cmd.Flags().Bool("trace-candidates", false, "Log every attempted candidate at DEBUG level")
	addScryptFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *crackCmd) run(out io.Writer) error {
	target := c.hash
	if target == "" {
		secret, err := c.deps.Prompter.ReadSecret("Target hash: ")
		if err != nil {
			if errors.Is(err, ErrNotTerminal) {
				return bosherr.Error("A target hash is required: pass --hash")
			}
			return bosherr.WrapError(err, "Reading target hash")
		}
		target = secret
	}

	req := crack.Request{
		Scheme:    c.mode,
		Target:    target,
		MaxMemory: c.config.Scrypt.MaxMemory,
	}
	if c.config.Scrypt.ParamsSet {
		opts, err := c.config.Scrypt.Options()
		if err != nil {
			return err
		}
		req.Scrypt = &opts
	}

	plan, err := crack.Resolve(req)
	if err != nil {
		return bosherr.WrapError(err, "Resolving target")
	}

	words, err := wordlist.Open(c.fs, c.file)
	if err != nil {
		return err
	}
	defer words.Close()

	runID := c.deps.NewRunID()
	c.logger.Info(appLogTag, "Run %s: cracking with %s", runID, plan)

	engine := crack.NewEngine(crack.Options{
		MaxCandidates: c.config.MaxCandidates,
		Observer:      crack.NewLoggerObserver(c.logger, c.config.TraceCandidates),
	})
	result := engine.Scan(plan, words.All())
	Report{RunID: runID, Plan: plan.String(), Source: c.file, Result: result}.Write(out)

	// The partial report is still written when the wordlist fails mid-scan.
	if err := words.Err(); err != nil {
		return bosherr.WrapError(err, "Scanning wordlist")
	}

	if !result.Found {
		return ErrNoMatch
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// digest
// ──────────────────────────────────────────────────────────────────────────────

type digestCmd struct {
	*app
	mode string
}

func newDigestCmd(a *app) *cobra.Command {
	c := &digestCmd{app: a}
	cmd := &cobra.Command{
		Use:   "digest -m MODE WORD...",
		Short: "Print the hex digest of each word",
		Example: `
  dictcrack digest -m sha256 password
  dictcrack digest -m scrypt --scrypt-n 1024 --scrypt-salt pepper password
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().StringVarP(&c.mode, "mode", "m", "", "Digest scheme")
	addScryptFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}

func (c *digestCmd) run(out io.Writer, words []string) error {
	scheme, err := hashing.ParseScheme(c.mode)
	if err != nil {
		return bosherr.WrapError(err, "Selecting scheme")
	}

	switch {
	case scheme == hashing.SchemeScrypt:
		return c.runScrypt(out, words)
	case hashing.IsVerificationOnly(scheme):
		return bosherr.Errorf("%s produces salted reference hashes; use 'dictcrack encode'", scheme)
	}

	alg, err := hashing.DefaultRegistry().Algorithm(scheme)
	if err != nil {
		return bosherr.WrapError(err, "Selecting scheme")
	}
	for _, word := range words {
		fmt.Fprintln(out, alg.DigestHex([]byte(word)))
	}
	return nil
}

func (c *digestCmd) runScrypt(out io.Writer, words []string) error {
	opts, err := c.config.Scrypt.Options()
	if err != nil {
		return err
	}
	s, err := hashing.NewScryptScheme(opts)
	if err != nil {
		return bosherr.WrapError(err, "Configuring scrypt")
	}
	for _, word := range words {
		dk, err := s.DeriveRaw([]byte(word))
		if err != nil {
			return bosherr.WrapError(err, "Deriving scrypt")
		}
		fmt.Fprintf(out, "%x\n", dk)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// encode
// ──────────────────────────────────────────────────────────────────────────────

const encodeSaltLen = 16

type encodeCmd struct {
	*app
	mode string
}

func newEncodeCmd(a *app) *cobra.Command {
	c := &encodeCmd{app: a}
	cmd := &cobra.Command{
		Use:   "encode [-m scrypt|bcrypt|argon2i|argon2id] WORD",
		Short: "Print a self-describing hash of a word",
		Example: `
  dictcrack encode password
  dictcrack encode -m bcrypt --bcrypt-cost 10 password
  dictcrack encode -m argon2id --argon2-memory 65536 password
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().StringVarP(&c.mode, "mode", "m", string(hashing.SchemeScrypt), "Scheme to encode with")
	addScryptFlags(cmd.Flags())
	d := DefaultConfig()
	cmd.Flags().Int("bcrypt-cost", d.Bcrypt.Cost, "bcrypt cost")
	cmd.Flags().Uint32("argon2-memory", d.Argon2.Memory, "argon2 memory in KiB")
	cmd.Flags().Uint32("argon2-time", d.Argon2.Time, "argon2 passes")
	cmd.Flags().Uint8("argon2-threads", d.Argon2.Threads, "argon2 parallelism")
	return cmd
}

func (c *encodeCmd) run(out io.Writer, word string) error {
	scheme, err := hashing.ParseScheme(c.mode)
	if err != nil {
		return bosherr.WrapError(err, "Selecting scheme")
	}

	var encoded string
	switch scheme {
	case hashing.SchemeScrypt:
		encoded, err = c.encodeScrypt(word)
	case hashing.SchemeBcrypt:
		encoded, err = hashing.EncodeBcrypt([]byte(word), c.config.Bcrypt.Cost)
	case hashing.SchemeArgon2i, hashing.SchemeArgon2id:
		encoded, err = hashing.EncodeArgon2(scheme, c.config.Argon2.Options(), []byte(word))
	default:
		return bosherr.Errorf("%s has no self-describing encoding; use 'dictcrack digest'", scheme)
	}
	if err != nil {
		return bosherr.WrapErrorf(err, "Encoding with %s", scheme)
	}

	fmt.Fprintln(out, encoded)
	return nil
}

// encodeScrypt uses the configured salt, or a random one when none is set.
func (c *encodeCmd) encodeScrypt(word string) (string, error) {
	opts, err := c.config.Scrypt.Options()
	if err != nil {
		return "", err
	}
	if !c.config.Scrypt.SaltSet {
		opts.Salt = make([]byte, encodeSaltLen)
		if _, err := rand.Read(opts.Salt); err != nil {
			return "", bosherr.WrapError(err, "Generating salt")
		}
	}
	s, err := hashing.NewScryptScheme(opts)
	if err != nil {
		return "", err
	}
	return s.Encode([]byte(word))
}

// ──────────────────────────────────────────────────────────────────────────────
// schemes
// ──────────────────────────────────────────────────────────────────────────────

func newSchemesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "List supported hash schemes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			reg := hashing.DefaultRegistry()
			for _, s := range reg.Schemes() {
				alg, err := reg.Algorithm(s)
				if err != nil {
					return err
				}
				desc := "digest"
				if sized, ok := alg.(interface{ Size() int }); ok {
					desc = fmt.Sprintf("digest, %d bytes", sized.Size())
				}
				fmt.Fprintf(out, "%-10s %s\n", s, desc)
			}
			fmt.Fprintf(out, "%-10s %s\n", hashing.SchemeScrypt, "raw hex with --scrypt-* parameters, or $scrypt$ encoded")
			for _, s := range []hashing.Scheme{hashing.SchemeBcrypt, hashing.SchemeArgon2i, hashing.SchemeArgon2id} {
				fmt.Fprintf(out, "%-10s %s\n", s, "reference hash, verification only")
			}
			a.logger.Debug(appLogTag, "Listed %d registered schemes", len(reg.Schemes()))
			return nil
		},
	}
}
