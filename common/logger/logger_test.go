package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ahvar/team-activity-monitor/common/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LogFields", func() {
	It("merges newer values over older ones", func() {
		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			RequestID: logger.Ptr(int64(1)),
			Member:    logger.Ptr("Ada"),
			Component: "monitor.service",
		})
		ctx = logger.WithLogFields(ctx, logger.LogFields{
			Section:   logger.Ptr("commits"),
			Component: "monitor.aggregator",
		})

		fields := logger.GetLogFields(ctx)
		Expect(*fields.RequestID).To(Equal(int64(1)))
		Expect(*fields.Member).To(Equal("Ada"))
		Expect(*fields.Section).To(Equal("commits"))
		Expect(fields.Component).To(Equal("monitor.aggregator"))
		Expect(fields.Intent).To(BeNil())
	})

	It("is empty for a bare context", func() {
		Expect(logger.GetLogFields(context.Background())).To(Equal(logger.LogFields{}))
	})
})

var _ = Describe("TraceHandler", func() {
	It("adds context fields to every record", func() {
		var buf bytes.Buffer
		log := slog.New(logger.NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			RequestID: logger.Ptr(int64(42)),
			Member:    logger.Ptr("Ada"),
			Intent:    logger.Ptr("commits_only"),
			Component: "monitor.aggregator",
		})
		log.InfoContext(ctx, "fetched", "count", 3)

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record).To(HaveKeyWithValue("request_id", BeNumerically("==", 42)))
		Expect(record).To(HaveKeyWithValue("member", "Ada"))
		Expect(record).To(HaveKeyWithValue("intent", "commits_only"))
		Expect(record).To(HaveKeyWithValue("component", "monitor.aggregator"))
		Expect(record).NotTo(HaveKey("trace_id"))
	})
})

var _ = Describe("Truncate", func() {
	It("cuts on rune boundaries", func() {
		Expect(logger.Truncate("héllo world", 5)).To(Equal("héllo..."))
		Expect(logger.Truncate("short", 10)).To(Equal("short"))
	})
})
