package app_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/hasbyte1/go-dictcrack/app"
	"github.com/hasbyte1/go-dictcrack/crack"
)

var _ = Describe("Report", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	It("prints the match and its strength", func() {
		Report{
			RunID:  "fake-run-id",
			Plan:   "md5 (digest)",
			Source: "words.txt",
			Result: crack.Result{Found: true, Line: 4, Candidate: "password", Attempts: 4},
		}.Write(out)

		Expect(out.String()).To(ContainSubstring("Run:       fake-run-id\n"))
		Expect(out.String()).To(ContainSubstring("Wordlist:  words.txt\n"))
		Expect(out.String()).To(ContainSubstring("Match found at line 4: password\n"))
		Expect(out.String()).To(ContainSubstring("Strength:  0/4"))
		Expect(out.String()).ToNot(ContainSubstring("No match found."))
	})

	It("prints counts, truncation and warnings when nothing matched", func() {
		Report{
			RunID: "fake-run-id",
			Plan:  "scrypt (scrypt-raw, n=16 r=1 p=1 key_len=32 salt_len=4)",
			Result: crack.Result{
				Attempts:  3,
				Skipped:   1,
				Failed:    1,
				Truncated: true,
				Warnings: []crack.Warning{
					{Line: 2, Kind: crack.WarnInvalidUTF8},
					{Line: 3, Kind: crack.WarnAttemptFailed, Err: errors.New("fake-derive-error")},
				},
			},
		}.Write(out)

		Expect(out.String()).To(ContainSubstring("No match found.\n"))
		Expect(out.String()).To(ContainSubstring("Attempts:  3 (skipped 1, failed 1)\n"))
		Expect(out.String()).To(ContainSubstring("Stopped at the candidate limit"))
		Expect(out.String()).To(ContainSubstring("Warning:   line 2: invalid utf-8\n"))
		Expect(out.String()).To(ContainSubstring("Warning:   line 3: attempt failed: fake-derive-error\n"))
		Expect(out.String()).ToNot(ContainSubstring("Strength"))
	})
})
