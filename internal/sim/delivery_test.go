package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swingsim/internal/physics"
	"github.com/san-kum/swingsim/internal/sim"
)

var _ = Describe("Delivery", func() {
	var (
		cfg    sim.Config
		params sim.Params
	)

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
		params = sim.Params{Speed: 35, VerticalAngle: -7.5, Restitution: 0.7, Friction: 0.8}
	})

	run := func() *sim.Result {
		result, err := sim.New(physics.NewBall(), nil, cfg).Run(params)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	finalZ := func(seam float64) float64 {
		params = params.WithSeam(seam)
		result := run()
		Expect(result.Valid()).To(BeTrue())
		return result.Trajectory.Final().Z
	}

	Context("with an upright seam", func() {
		It("bounces on the pitch and keeps its line", func() {
			result := run()

			Expect(result.Outcome).To(Equal(sim.OutcomeValid))
			Expect(result.Reason).To(Equal(sim.ReasonEndOfPitch))
			Expect(result.Bounce).NotTo(BeNil())
			Expect(result.Bounce.X).To(BeNumerically(">", 0))
			Expect(result.Bounce.X).To(BeNumerically("<", cfg.Pitch.Length))
			Expect(result.Trajectory.Final().Z).To(Equal(cfg.ReleaseOffset))
		})

		It("passes over the stumps from a good length", func() {
			final := run().Trajectory.Final()
			Expect(cfg.Pitch.Hit(final.X, final.Y, final.Z)).To(BeFalse())
			Expect(final.Y).To(BeNumerically(">", cfg.Pitch.Stumps.Height))
		})
	})

	Context("with an angled seam", func() {
		It("swings towards the seam", func() {
			Expect(finalZ(20)).To(BeNumerically(">", cfg.ReleaseOffset))
		})

		It("swings the other way when the seam is reversed", func() {
			Expect(finalZ(-20)).To(BeNumerically("<", cfg.ReleaseOffset))
		})

		It("swings symmetrically about the release line", func() {
			in := finalZ(20) - cfg.ReleaseOffset
			out := finalZ(-20) - cfg.ReleaseOffset
			Expect(in).To(BeNumerically("~", -out, 1e-9))
		})

		It("leaves the pitch with a fully side-on seam", func() {
			params.SeamAngle = 90
			result := run()
			Expect(result.Valid()).To(BeFalse())
			Expect(result.Err()).To(MatchError(sim.ErrInvalidTrajectory))
		})
	})

	Context("released wide", func() {
		It("is invalid with no samples", func() {
			params.HorizontalAngle = 80
			result := run()

			Expect(result.Outcome).To(Equal(sim.OutcomeInvalid))
			Expect(result.Reason).To(Equal(sim.ReasonLateralExit))
			Expect(result.Trajectory).To(BeNil())
		})
	})

	Context("from middle stump", func() {
		BeforeEach(func() {
			cfg.ReleaseOffset = 0
		})

		It("hits the stumps when pitched up", func() {
			params.VerticalAngle = -2
			final := run().Trajectory.Final()
			Expect(cfg.Pitch.Hit(final.X, final.Y, final.Z)).To(BeTrue())
		})

		It("does not bounce when bowled upwards", func() {
			params.VerticalAngle = 5
			result := run()
			Expect(result.Valid()).To(BeTrue())
			Expect(result.Bounce).To(BeNil())
		})
	})

	Context("on a dead surface", func() {
		BeforeEach(func() {
			cfg.ReleaseHeight = 0.3
			params = sim.Params{Speed: 30, Restitution: 0.05, Friction: 0.8}
		})

		It("settles after the bounce", func() {
			result := run()

			Expect(result.Reason).To(Equal(sim.ReasonSettled))
			Expect(result.Trajectory.Final().VY).To(BeNumerically("<", cfg.SettleSpeed))
			Expect(result.Trajectory.Final().VY).To(BeNumerically(">", -cfg.SettleSpeed))
		})
	})

	It("produces identical results for identical inputs", func() {
		params.SeamAngle = 15
		a, b := run(), run()
		Expect(a.Trajectory.Samples()).To(Equal(b.Trajectory.Samples()))
	})
})
