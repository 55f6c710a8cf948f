package logger_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"

	"github.com/shaunagostinho/drone-telemetry/internal/logger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Setup", func() {
	AfterEach(func() {
		log.SetOutput(os.Stderr)
	})

	It("Should write to a rotating file and mirror to the console", func() {
		dir, err := os.MkdirTemp("", "drone-log")
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
		path := filepath.Join(dir, "logs", "drone.log")
		var console bytes.Buffer

		closer, err := logger.Setup(logger.Config{Path: path}, &console)
		Expect(err).ToNot(HaveOccurred())
		log.Printf("[test] hello")
		Expect(closer.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("[test] hello"))
		Expect(console.String()).To(ContainSubstring("[test] hello"))
	})

	It("Should log to the console without a path", func() {
		var console bytes.Buffer
		closer, err := logger.Setup(logger.Config{}, &console)
		Expect(err).ToNot(HaveOccurred())
		log.Printf("[test] console only")
		Expect(console.String()).To(ContainSubstring("[test] console only"))
		Expect(closer.Close()).To(Succeed())
	})

	It("Should discard output with neither path nor console", func() {
		closer, err := logger.Setup(logger.Config{}, nil)
		Expect(err).ToNot(HaveOccurred())
		log.Printf("[test] nowhere")
		Expect(closer.Close()).To(Succeed())
	})
})
