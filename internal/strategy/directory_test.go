package strategy_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/action-router/internal/action"
	"github.com/angeloszaimis/action-router/internal/backend"
	"github.com/angeloszaimis/action-router/internal/backend/backendtest"
	"github.com/angeloszaimis/action-router/internal/strategy"
)

var _ = Describe("Directory lookup", func() {
	var (
		fake  *backendtest.Fake
		strat strategy.Strategy
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = &backendtest.Fake{
			Record: backend.DirectoryRecord{
				FirstName: "Ada",
				LastName:  "Lovelace",
				CrewID:    "EMP1",
			},
		}
		strat = strategy.NewDirectoryStrategy(fake, "Employee Directory")
	})

	Describe("Validate", func() {
		It("should accept a non-empty name", func() {
			Expect(strat.Validate(action.Parameters{"name": "Ada"})).To(Succeed())
		})

		DescribeTable("should pass whitespace-only names through to the backend unchanged",
			func(name string) {
				_, err := strategy.Run(ctx, strat, action.Parameters{"name": name})
				Expect(err).NotTo(HaveOccurred())
				Expect(fake.DirectoryCalls()).To(Equal(1))
				Expect(fake.LastQuery().Name).To(Equal(name))
			},
			Entry("single space", " "),
			Entry("tabs and newlines", "\t\n"),
			Entry("padded name", "  Ada  "),
		)

		DescribeTable("should reject missing names",
			func(params action.Parameters) {
				err := strat.Validate(params)
				Expect(err).To(HaveOccurred())

				actionErr := action.AsError(err)
				Expect(actionErr.Kind).To(Equal(action.KindValidation))
				Expect(actionErr.StatusCode).To(Equal(400))
				Expect(actionErr.Message).To(Equal("Name parameter is required"))
			},
			Entry("nil parameters", nil),
			Entry("empty parameters", action.Parameters{}),
			Entry("empty name", action.Parameters{"name": ""}),
			Entry("unrelated parameter", action.Parameters{"query": "Ada"}),
		)
	})

	Describe("Run", func() {
		It("should not call the backend when validation fails", func() {
			_, err := strategy.Run(ctx, strat, action.Parameters{})
			Expect(err).To(HaveOccurred())
			Expect(fake.Calls()).To(Equal(0))
		})

		It("should send the name and tag the record with metadata", func() {
			result, err := strategy.Run(ctx, strat, action.Parameters{"name": "Ada"})
			Expect(err).NotTo(HaveOccurred())
			Expect(fake.DirectoryCalls()).To(Equal(1))
			Expect(fake.LastQuery()).To(Equal(backend.DirectoryQuery{Name: "Ada"}))

			response, ok := result.(strategy.DirectoryResponse)
			Expect(ok).To(BeTrue())
			Expect(response.FirstName).To(Equal("Ada"))
			Expect(response.CrewID).To(Equal("EMP1"))
			Expect(response.Metadata).To(Equal(strategy.ResponseMetadata{
				ResponseType: "EMPLOYEE_INFO",
				Source:       "Employee Directory",
			}))
		})

		It("should wrap backend failures", func() {
			fake.Err = errors.New("connection refused")

			_, err := strategy.Run(ctx, strat, action.Parameters{"name": "Ada"})
			Expect(err).To(HaveOccurred())

			actionErr := action.AsError(err)
			Expect(actionErr.Kind).To(Equal(action.KindBackend))
			Expect(actionErr.StatusCode).To(Equal(500))
			Expect(actionErr.Message).To(Equal("Failed to retrieve employee information"))
			Expect(actionErr.Details).To(Equal("connection refused"))
		})
	})
})
