package logger_test

import (
	"bytes"
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/action-router/pkg/logger"
)

var _ = Describe("Logger", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("New", func() {
		DescribeTable("should respect the configured level",
			func(level string, enabled, disabled slog.Level) {
				log := logger.New(logger.Options{Level: level, Environment: "dev", Output: &bytes.Buffer{}})

				Expect(log.Enabled(ctx, enabled)).To(BeTrue())
				Expect(log.Enabled(ctx, disabled)).To(BeFalse())
			},
			Entry("info", "info", slog.LevelInfo, slog.LevelDebug),
			Entry("warn", "warn", slog.LevelWarn, slog.LevelInfo),
			Entry("error", "error", slog.LevelError, slog.LevelWarn),
			Entry("invalid defaults to info", "invalid", slog.LevelInfo, slog.LevelDebug),
		)

		It("should respect debug level", func() {
			log := logger.New(logger.Options{Level: "debug", Output: &bytes.Buffer{}})

			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
		})

		It("should write text with the environment attribute outside prod", func() {
			var buf bytes.Buffer
			log := logger.New(logger.Options{Level: "info", Environment: "dev", Output: &buf})

			log.Info("hello", slog.String("api_path", "/Crew"))

			Expect(buf.String()).To(ContainSubstring("environment=dev"))
			Expect(buf.String()).To(ContainSubstring("api_path=/Crew"))
		})

		It("should write JSON in prod", func() {
			var buf bytes.Buffer
			log := logger.New(logger.Options{Level: "info", Environment: "prod", Output: &buf})

			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring(`"environment":"prod"`))
			Expect(buf.String()).To(ContainSubstring(`"msg":"hello"`))
		})

		It("should support addSource option", func() {
			var buf bytes.Buffer
			log := logger.New(logger.Options{Level: "info", AddSource: true, Environment: "prod", Output: &buf})

			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring(`"source"`))
		})
	})
})
