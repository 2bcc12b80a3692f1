package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ahvar/team-activity-monitor/common/logger"
	"github.com/ahvar/team-activity-monitor/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	var router *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		router.Use(middleware.Recovery())
		router.Use(middleware.Logger())
	})

	serve := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("tags the request context with the request ID it returns", func() {
		var fields logger.LogFields
		router.GET("/ping", func(c *gin.Context) {
			fields = logger.GetLogFields(c.Request.Context())
			c.String(http.StatusOK, "pong")
		})

		w := serve("/ping?x=1")

		Expect(w.Code).To(Equal(http.StatusOK))
		header := w.Header().Get(middleware.RequestIDHeader)
		Expect(header).NotTo(BeEmpty())

		Expect(fields.RequestID).NotTo(BeNil())
		Expect(strconv.FormatInt(*fields.RequestID, 10)).To(Equal(header))
		Expect(fields.Component).To(Equal("monitor.http"))
	})

	It("gives every request its own ID", func() {
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		first := serve("/ping").Header().Get(middleware.RequestIDHeader)
		second := serve("/ping").Header().Get(middleware.RequestIDHeader)
		Expect(first).NotTo(Equal(second))
	})

	It("turns a panic into a 500", func() {
		router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := serve("/boom")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error": "internal server error"}`))
	})
})
