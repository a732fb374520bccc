package transcription_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scribeline/transcriber/internal/transcription"
)

var _ = Describe("result", func() {
	pricing := transcription.Pricing{InputPerMillion: 0.50, OutputPerMillion: 3.00}

	Context("cost", func() {
		It("prices a million tokens at the configured rate", func() {
			cost := transcription.CalculateCost(1_000_000, 1_000_000, pricing)
			Expect(cost.Input).To(Equal(0.50))
			Expect(cost.Output).To(Equal(3.00))
			Expect(cost.Total).To(Equal(3.50))
		})

		It("is zero for no tokens", func() {
			Expect(transcription.CalculateCost(0, 0, pricing)).To(Equal(transcription.Cost{}))
		})

		It("grows with token counts", func() {
			prev := transcription.CalculateCost(0, 0, pricing)
			for _, n := range []int{1, 10, 1_000, 250_000, 4_000_000} {
				cur := transcription.CalculateCost(n, n, pricing)
				Expect(cur.Input).To(BeNumerically(">=", prev.Input))
				Expect(cur.Output).To(BeNumerically(">=", prev.Output))
				Expect(cur.Total).To(Equal(cur.Input + cur.Output))
				prev = cur
			}
		})
	})

	It("formats stats", func() {
		result := transcription.NewResult("x", transcription.Usage{InputTokens: 1234567, OutputTokens: 56, TotalTokens: 1234623}, pricing)
		Expect(result.FormattedStats()).To(Equal("Tokens: 1,234,567 input / 56 output | Cost: $0.6175"))
	})
})
