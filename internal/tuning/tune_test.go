package tuning

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidlab/internal/process"
)

var _ = Describe("Tune", func() {
	model := process.Model{Gain: 2, TimeConstant: 10, DeadTime: 1}
	opts := DefaultOptions()

	DescribeTable("reaction-curve rules",
		func(rule Rule, kp, ti, td float64) {
			t, err := Tune(model, rule, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Rule).To(Equal(rule.Name()))
			Expect(t.Degenerate).To(BeFalse())
			Expect(t.Gains.Kp).To(BeNumerically("~", kp, 1e-9))
			Expect(t.Gains.Ti).To(BeNumerically("~", ti, 1e-9))
			Expect(t.Gains.Td).To(BeNumerically("~", td, 1e-9))
		},
		Entry("Ziegler-Nichols", ZieglerNichols{}, 6.0, 2.0, 0.5),
		Entry("CHR 20%", CHROvershoot{}, 4.75, 13.57, 0.473),
		Entry("CHR 0%", CHRNoOvershoot{}, 3.0, 10.0, 0.5),
		Entry("ITAE", ITAE{},
			0.4825*math.Pow(0.1, -0.85), 10/(0.796-0.01465), 3.08*math.Pow(0.1, 0.929)),
		Entry("IMC", IMC{Lambda: 1}, 3.5, 10.5, 10.0/21.0),
		Entry("Cohen-Coon", CohenCoon{}, 163.0/24.0, 32.6/13.8, 4/11.2),
	)

	It("passes manual gains through unchanged", func() {
		t, err := Tune(model, Manual{Kp: -1, Ti: 0, Td: 3}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Gains).To(Equal(process.Gains{Kp: -1, Ti: 0, Td: 3}))
		Expect(t.Degenerate).To(BeFalse())
	})

	It("rejects non-finite manual gains", func() {
		_, err := Tune(model, Manual{Kp: math.NaN(), Ti: 1}, opts)
		Expect(err).To(MatchError(process.ErrNonFinite))

		var terr *process.TuningError
		Expect(err).To(BeAssignableToTypeOf(terr))
	})

	It("accepts manual gains for any model", func() {
		_, err := Tune(process.Model{Gain: -3}, Manual{Kp: 1}, opts)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with zero dead time", func() {
		lag := process.Model{Gain: 2, TimeConstant: 10}

		It("substitutes the floor and flags the result", func() {
			t, err := Tune(lag, ZieglerNichols{}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Degenerate).To(BeTrue())
			Expect(t.DeadTimeUsed).To(BeNumerically("~", 0.1, 1e-12))
			Expect(t.Gains.Kp).To(BeNumerically("~", 60, 1e-9))
			Expect(t.Gains.Ti).To(BeNumerically("~", 0.2, 1e-12))
			Expect(t.Gains.IsFinite()).To(BeTrue())
			Expect(t.Notes).NotTo(BeEmpty())
		})

		It("honours a custom floor ratio", func() {
			t, err := Tune(lag, CHRNoOvershoot{}, Options{DeadTimeFloorRatio: 0.05})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.DeadTimeUsed).To(BeNumerically("~", 0.5, 1e-12))
			Expect(t.Gains.Kp).To(BeNumerically("~", 6, 1e-9))
		})

		It("needs no floor for IMC", func() {
			t, err := Tune(lag, IMC{Lambda: 2}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Degenerate).To(BeFalse())
			Expect(t.Gains.Kp).To(BeNumerically("~", 2.5, 1e-12))
			Expect(t.Gains.Td).To(BeZero())
		})

		It("produces finite gains for every automatic rule", func() {
			for _, rule := range Automatic(0) {
				t, err := Tune(lag, rule, opts)
				Expect(err).NotTo(HaveOccurred(), rule.Name())
				Expect(t.Gains.IsFinite()).To(BeTrue(), rule.Name())
				Expect(t.Gains.Kp).To(BeNumerically(">", 0), rule.Name())
			}
		})
	})

	DescribeTable("model domain",
		func(m process.Model, rule Rule) {
			_, err := Tune(m, rule, opts)
			Expect(err).To(MatchError(process.ErrModelDomain))
		},
		Entry("zero gain", process.Model{Gain: 0, TimeConstant: 10, DeadTime: 1}, ZieglerNichols{}),
		Entry("negative gain", process.Model{Gain: -2, TimeConstant: 10, DeadTime: 1}, CHROvershoot{}),
		Entry("zero time constant", process.Model{Gain: 2, TimeConstant: 0, DeadTime: 1}, CohenCoon{}),
		Entry("negative dead time", process.Model{Gain: 2, TimeConstant: 10, DeadTime: -1}, IMC{Lambda: 1}),
		Entry("nan gain", process.Model{Gain: math.NaN(), TimeConstant: 10, DeadTime: 1}, ITAE{}),
		Entry("ITAE beyond its correlation", process.Model{Gain: 1, TimeConstant: 1, DeadTime: 6}, ITAE{}),
		Entry("IMC without lambda", model, IMC{}),
	)

	It("notes ITAE outside the fitting range", func() {
		t, err := Tune(process.Model{Gain: 1, TimeConstant: 1, DeadTime: 2}, ITAE{}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Notes).To(ContainElement(ContainSubstring("fitting range")))
	})

	It("rejects a missing rule", func() {
		_, err := Tune(model, nil, opts)
		Expect(err).To(MatchError(process.ErrInvalidRule))
	})
})

var _ = Describe("ParseRule", func() {
	DescribeTable("names and aliases",
		func(name string, want Rule) {
			r, err := ParseRule(name, Params{Lambda: 3, Kp: 1, Ti: 2, Td: 0.5})
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(Equal(want))
		},
		Entry(nil, "zn", ZieglerNichols{}),
		Entry(nil, "Ziegler-Nichols", ZieglerNichols{}),
		Entry(nil, "chr", CHROvershoot{}),
		Entry(nil, "chr0", CHRNoOvershoot{}),
		Entry(nil, "itae", ITAE{}),
		Entry(nil, "imc", IMC{Lambda: 3}),
		Entry(nil, " cc ", CohenCoon{}),
		Entry(nil, "manual", Manual{Kp: 1, Ti: 2, Td: 0.5}),
	)

	It("defaults the IMC lambda", func() {
		r, err := ParseRule("imc", Params{})
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(IMC{Lambda: DefaultLambda}))
	})

	It("rejects unknown rules", func() {
		_, err := ParseRule("tyreus-luyben", Params{})
		Expect(err).To(MatchError(ContainSubstring("unknown tuning rule")))
	})

	It("lists canonical names", func() {
		Expect(Names()).To(ConsistOf("ziegler-nichols", "chr-20", "chr-0", "itae", "imc", "cohen-coon", "manual"))
	})
})
