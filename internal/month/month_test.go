package month_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/envelope-budget/internal/month"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMonth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Month Suite")
}

var _ = Describe("Month", func() {
	Describe("Validate", func() {
		It("should accept zero-padded YYYY-MM strings", func() {
			Expect(month.Validate("2024-01")).To(BeNil())
			Expect(month.Validate("2023-12")).To(BeNil())
			Expect(month.Validate("1999-06")).To(BeNil())
		})

		It("should reject unpadded months", func() {
			Expect(month.Validate("2024-1")).NotTo(BeNil())
		})

		It("should reject month numbers outside 01-12", func() {
			Expect(month.Validate("2024-00")).NotTo(BeNil())
			Expect(month.Validate("2024-13")).NotTo(BeNil())
		})

		It("should reject full dates and garbage", func() {
			Expect(month.Validate("2024-01-15")).NotTo(BeNil())
			Expect(month.Validate("january")).NotTo(BeNil())
			Expect(month.Validate("")).NotTo(BeNil())
		})
	})

	Describe("Previous", func() {
		It("should decrement within a year", func() {
			prev, err := month.Previous("2024-03")
			Expect(err).To(BeNil())
			Expect(prev).To(Equal("2024-02"))
		})

		It("should roll the year back from January", func() {
			prev, err := month.Previous("2024-01")
			Expect(err).To(BeNil())
			Expect(prev).To(Equal("2023-12"))
		})

		It("should keep zero padding", func() {
			prev, err := month.Previous("2024-10")
			Expect(err).To(BeNil())
			Expect(prev).To(Equal("2024-09"))
		})

		It("should reject invalid input", func() {
			_, err := month.Previous("2024/01")
			Expect(err).NotTo(BeNil())
		})
	})

	Describe("OfDate", func() {
		It("should format the month of a date", func() {
			d := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
			Expect(month.OfDate(d)).To(Equal("2024-03"))
		})
	})

	Describe("ParseDate", func() {
		It("should accept zero-padded YYYY-MM-DD dates", func() {
			d, err := month.ParseDate("2024-03-15")
			Expect(err).To(BeNil())
			Expect(d.Year()).To(Equal(2024))
			Expect(d.Month()).To(Equal(time.March))
			Expect(d.Day()).To(Equal(15))
		})

		It("should reject malformed dates", func() {
			_, err := month.ParseDate("2024-3-15")
			Expect(err).NotTo(BeNil())
			_, err = month.ParseDate("2024-02-30")
			Expect(err).NotTo(BeNil())
			_, err = month.ParseDate("15-03-2024")
			Expect(err).NotTo(BeNil())
		})
	})
})
