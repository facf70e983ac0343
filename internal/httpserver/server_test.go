package httpserver_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/action-router/internal/httpserver"
)

var noop = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

var _ = Describe("HTTP Server", func() {
	Context("server creation", func() {
		DescribeTable("accepts listen addresses",
			func(addr string) {
				srv, err := httpserver.New(addr, noop)
				Expect(err).NotTo(HaveOccurred())
				Expect(srv.Addr()).To(Equal(addr))
			},
			Entry("hostname", "localhost:9999"),
			Entry("IP address", "127.0.0.1:9999"),
			Entry("port only", ":9999"),
		)

		DescribeTable("rejects listen addresses",
			func(addr, message string) {
				srv, err := httpserver.New(addr, noop)
				Expect(err).To(MatchError(ContainSubstring(message)))
				Expect(srv).To(BeNil())
			},
			Entry("empty port", "localhost:", "port cant be empty"),
			Entry("too many colons", "invalid:host:port", "host:port"),
			Entry("no port", "localhost", "host:port"),
			Entry("bad host", "bad_host!:8080", "invalid host"),
		)

		It("accepts options", func() {
			log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
			srv, err := httpserver.New(":9999", noop,
				httpserver.WithTimeouts(time.Second, 2*time.Second),
				httpserver.WithTimeouts(0, 0),
				httpserver.WithLogger(log),
				httpserver.WithLogger(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(srv).NotTo(BeNil())
		})
	})

	Context("address validation", func() {
		It("rejects values that are not strings", func() {
			Expect(httpserver.ValidateAddress(8080)).To(MatchError(ContainSubstring("must be a string")))
		})
	})

	Context("server lifecycle", func() {
		var srv *httpserver.Server

		AfterEach(func() {
			if srv != nil {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}
		})

		It("serves requests until shut down", func() {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"status":"ok"}`))
			})
			var err error
			srv, err = httpserver.New("127.0.0.1:19999", h)
			Expect(err).NotTo(HaveOccurred())

			done := make(chan error, 1)
			go func() { done <- srv.Start() }()

			var resp *http.Response
			Eventually(func() error {
				resp, err = http.Get("http://127.0.0.1:19999/health")
				return err
			}, 2*time.Second, 20*time.Millisecond).Should(Succeed())
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(string(body)).To(Equal(`{"status":"ok"}`))

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			Eventually(done).Should(Receive(BeNil()))
			srv = nil
		})

		It("returns the listen error when the port is taken", func() {
			var err error
			srv, err = httpserver.New("127.0.0.1:19998", noop)
			Expect(err).NotTo(HaveOccurred())
			go srv.Start()

			Eventually(func() error {
				resp, err := http.Get("http://127.0.0.1:19998/")
				if err == nil {
					resp.Body.Close()
				}
				return err
			}, 2*time.Second, 20*time.Millisecond).Should(Succeed())

			second, err := httpserver.New("127.0.0.1:19998", noop)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Start()).To(HaveOccurred())
		})
	})
})
