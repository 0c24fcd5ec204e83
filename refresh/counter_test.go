package refresh

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/refreshsim/sim"
)

type hookRecorder struct {
	ctxs []sim.HookCtx
}

func (r *hookRecorder) Func(ctx sim.HookCtx) {
	r.ctxs = append(r.ctxs, ctx)
}

func (r *hookRecorder) countAt(pos *sim.HookPos) int {
	n := 0
	for _, ctx := range r.ctxs {
		if ctx.Pos == pos {
			n++
		}
	}
	return n
}

var _ = Describe("CycleCounter", func() {
	var (
		counter  *CycleCounter
		recorder *hookRecorder
	)

	BeforeEach(func() {
		counter = NewCycleCounter("Counter", 16)
		recorder = &hookRecorder{}
		counter.AcceptHook(recorder)
	})

	It("should be idle after creation", func() {
		Expect(counter.Assigned()).To(BeFalse())
		Expect(counter.Done()).To(BeFalse())
		Expect(counter.AssignedBank()).To(Equal(uint64(0)))
		Expect(counter.Remaining()).To(Equal(uint64(0)))
	})

	It("should hold its state while idle", func() {
		for i := 0; i < 10; i++ {
			err := counter.Update(Input{})

			Expect(err).To(BeNil())
			Expect(counter.Assigned()).To(BeFalse())
			Expect(counter.AssignedBank()).To(Equal(uint64(0)))
			Expect(counter.Remaining()).To(Equal(uint64(0)))
		}
	})

	It("should arm and count down", func() {
		err := counter.Update(Input{Start: true, Duration: 3, Bank: 5})

		Expect(err).To(BeNil())
		Expect(counter.Assigned()).To(BeTrue())
		Expect(counter.AssignedBank()).To(Equal(uint64(5)))
		Expect(counter.Remaining()).To(Equal(uint64(3)))
		Expect(recorder.countAt(HookPosCounterArmed)).To(Equal(1))

		counter.Update(Input{})
		Expect(counter.Remaining()).To(Equal(uint64(2)))
		Expect(counter.Done()).To(BeFalse())

		counter.Update(Input{})
		Expect(counter.Remaining()).To(Equal(uint64(1)))
		Expect(counter.Done()).To(BeFalse())

		counter.Update(Input{})
		Expect(counter.Remaining()).To(Equal(uint64(0)))
		Expect(counter.Assigned()).To(BeTrue())
		Expect(counter.Done()).To(BeTrue())
		Expect(counter.AssignedBank()).To(Equal(uint64(5)))

		counter.Update(Input{})
		Expect(counter.Assigned()).To(BeFalse())
		Expect(counter.Done()).To(BeFalse())
		Expect(counter.AssignedBank()).To(Equal(uint64(0)))
		Expect(recorder.countAt(HookPosCounterDone)).To(Equal(1))
	})

	It("should decrement strictly by one per tick", func() {
		counter.Update(Input{Start: true, Duration: 100, Bank: 1})

		prev := counter.Remaining()
		for prev > 0 {
			counter.Update(Input{})
			Expect(counter.Remaining()).To(Equal(prev - 1))
			prev = counter.Remaining()
		}
	})

	It("should pulse done immediately for a zero duration", func() {
		counter.Update(Input{Start: true, Duration: 0, Bank: 2})

		Expect(counter.Assigned()).To(BeTrue())
		Expect(counter.Done()).To(BeTrue())
		Expect(counter.AssignedBank()).To(Equal(uint64(2)))

		counter.Update(Input{})
		Expect(counter.Assigned()).To(BeFalse())
		Expect(counter.Done()).To(BeFalse())
	})

	It("should pulse done for exactly one tick", func() {
		counter.Update(Input{Start: true, Duration: 2, Bank: 3})

		doneTicks := 0
		for i := 0; i < 10; i++ {
			if counter.Done() {
				doneTicks++
			}
			counter.Update(Input{})
		}

		Expect(doneTicks).To(Equal(1))
		Expect(recorder.countAt(HookPosCounterDone)).To(Equal(1))
	})

	It("should reject re-arming while busy", func() {
		counter.Update(Input{Start: true, Duration: 3, Bank: 5})
		counter.Update(Input{})

		err := counter.Update(Input{Start: true, Duration: 7, Bank: 6})

		Expect(err).To(HaveOccurred())
		violation := err.(*ProtocolViolation)
		Expect(violation.Kind).To(Equal(ReArmWhileBusy))
		Expect(violation.Counter).To(Equal("Counter"))
		Expect(violation.Input.Duration).To(Equal(uint64(7)))

		Expect(counter.Assigned()).To(BeTrue())
		Expect(counter.AssignedBank()).To(Equal(uint64(5)))
		Expect(counter.Remaining()).To(Equal(uint64(2)))
		Expect(recorder.countAt(HookPosViolation)).To(Equal(1))
	})

	It("should reject re-arming on the completion tick", func() {
		counter.Update(Input{Start: true, Duration: 0, Bank: 5})
		Expect(counter.Done()).To(BeTrue())

		err := counter.Update(Input{Start: true, Duration: 4, Bank: 6})

		Expect(err).To(HaveOccurred())
		Expect(err.(*ProtocolViolation).Kind).To(Equal(ReArmWhileBusy))
		Expect(counter.AssignedBank()).To(Equal(uint64(5)))
	})

	It("should reject a duration wider than the counter", func() {
		err := counter.Update(Input{Start: true, Duration: 1 << 16, Bank: 1})

		Expect(err).To(HaveOccurred())
		Expect(err.(*ProtocolViolation).Kind).
			To(Equal(IllegalStateCombination))
		Expect(counter.Assigned()).To(BeFalse())
		Expect(counter.Remaining()).To(Equal(uint64(0)))
	})

	It("should flag a non-zero count while unassigned", func() {
		counter.count = 4 // corrupted by a buggy host

		err := counter.Update(Input{})

		Expect(err).To(HaveOccurred())
		Expect(err.(*ProtocolViolation).Kind).
			To(Equal(IllegalStateCombination))
		Expect(counter.Remaining()).To(Equal(uint64(4)))
	})

	It("should reset in the middle of a countdown", func() {
		counter.Update(Input{Start: true, Duration: 10, Bank: 7})
		counter.Update(Input{})

		err := counter.Update(Input{Reset: true})

		Expect(err).To(BeNil())
		Expect(counter.Assigned()).To(BeFalse())
		Expect(counter.AssignedBank()).To(Equal(uint64(0)))
		Expect(counter.Remaining()).To(Equal(uint64(0)))
	})

	It("should let reset win over a concurrent start", func() {
		err := counter.Update(Input{Reset: true, Start: true, Duration: 5, Bank: 1})

		Expect(err).To(BeNil())
		Expect(counter.Assigned()).To(BeFalse())
		Expect(counter.Remaining()).To(Equal(uint64(0)))
	})

	It("should allow re-arming after completion", func() {
		counter.Update(Input{Start: true, Duration: 1, Bank: 5})
		counter.Update(Input{})
		Expect(counter.Done()).To(BeTrue())
		counter.Update(Input{})
		Expect(counter.Assigned()).To(BeFalse())

		err := counter.Update(Input{Start: true, Duration: 2, Bank: 6})

		Expect(err).To(BeNil())
		Expect(counter.Assigned()).To(BeTrue())
		Expect(counter.AssignedBank()).To(Equal(uint64(6)))
		Expect(counter.Remaining()).To(Equal(uint64(2)))
	})

	It("should panic on an invalid width", func() {
		Expect(func() { NewCycleCounter("C", 0) }).To(Panic())
		Expect(func() { NewCycleCounter("C", 65) }).To(Panic())
	})
})
