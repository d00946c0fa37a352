package sim

import (
	gomock "go.uber.org/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueue", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueueImpl
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newEventAt := func(t VTimeInSec) *MockEvent {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(t).AnyTimes()
		return evt
	}

	It("should pop events in time order", func() {
		evt1 := newEventAt(3.0)
		evt2 := newEventAt(1.0)
		evt3 := newEventAt(2.0)

		queue.Push(evt1)
		queue.Push(evt2)
		queue.Push(evt3)

		Expect(queue.Len()).To(Equal(3))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(1.0)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(2.0)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(3.0)))
		Expect(queue.Len()).To(Equal(0))
	})

	It("should peek without removing", func() {
		evt := newEventAt(4.0)

		queue.Push(evt)

		Expect(queue.Peek().Time()).To(Equal(VTimeInSec(4.0)))
		Expect(queue.Len()).To(Equal(1))
	})
})
