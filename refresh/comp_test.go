package refresh

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/refreshsim/sim"
)

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		comp     *Comp
		m        *middleware
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)

		comp = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.Hz).
			Build("RefreshSlot")
		m = comp.Middlewares()[0].(*middleware)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic when built without an engine", func() {
		Expect(func() { MakeBuilder().Build("RefreshSlot") }).To(Panic())
	})

	It("should schedule a tick when armed", func() {
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(0))
		engine.EXPECT().Schedule(gomock.Any()).
			Do(func(e sim.TickEvent) {
				Expect(e.Time()).To(Equal(sim.VTimeInSec(1)))
			})

		comp.Arm(3, 5)
	})

	It("should drive the counter through a full refresh cycle", func() {
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(0)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).AnyTimes()

		comp.Arm(2, 5)

		Expect(m.Tick()).To(BeTrue())
		Expect(comp.Busy()).To(BeTrue())
		Expect(comp.AssignedBank()).To(Equal(uint64(5)))

		Expect(m.Tick()).To(BeTrue()) // 2 -> 1
		Expect(m.Tick()).To(BeTrue()) // 1 -> 0
		Expect(comp.Counter().Done()).To(BeTrue())

		Expect(m.Tick()).To(BeTrue()) // reap
		Expect(comp.Busy()).To(BeFalse())
		Expect(comp.AssignedBank()).To(Equal(uint64(0)))

		Expect(m.Tick()).To(BeFalse()) // idle, stop ticking
	})

	It("should present the start input for exactly one tick", func() {
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(0)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).AnyTimes()

		comp.Arm(0, 1)

		m.Tick()
		Expect(comp.Counter().Done()).To(BeTrue())

		m.Tick()
		Expect(comp.Busy()).To(BeFalse())
	})

	It("should apply reset over a latched arm request", func() {
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(0)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).AnyTimes()

		comp.Arm(3, 5)
		comp.Reset()

		m.Tick()

		Expect(comp.Busy()).To(BeFalse())
		Expect(comp.AssignedBank()).To(Equal(uint64(0)))
	})

	It("should survive an arm request while busy", func() {
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(0)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).AnyTimes()

		recorder := &hookRecorder{}
		comp.Counter().AcceptHook(recorder)

		comp.Arm(3, 5)
		m.Tick()

		comp.Arm(2, 6) // protocol violation, flagged and ignored
		m.Tick()

		Expect(comp.Busy()).To(BeTrue())
		Expect(comp.AssignedBank()).To(Equal(uint64(5)))
		Expect(recorder.countAt(HookPosViolation)).To(Equal(1))
	})
})
