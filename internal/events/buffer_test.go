package events

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", Ordered, func() {
	Context("buffer", func() {
		It("add successfully", func() {
			buffer := newBuffer()

			// add the first message
			prev := buffer.PushBack(&message{Kind: JobCreatedKind, Data: []byte("msg1")})
			Expect(prev).To(Equal(0))
			Expect(buffer.Size()).To(Equal(1))
			Expect(buffer.head).NotTo(BeNil())
			Expect(buffer.tail).NotTo(BeNil())

			// second
			prev = buffer.PushBack(&message{Kind: JobCompletedKind, Data: []byte("msg2")})
			Expect(prev).To(Equal(1))
			Expect(buffer.Size()).To(Equal(2))

			Expect(buffer.head.Data).To(Equal([]byte("msg1")))
			Expect(buffer.tail.Data).To(Equal([]byte("msg2")))

			// third
			buffer.PushBack(&message{Kind: JobFailedKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(3))
			Expect(buffer.head.Data).To(Equal([]byte("msg1")))
			Expect(buffer.tail.Data).To(Equal([]byte("msg3")))
		})

		It("pop", func() {
			buffer := newBuffer()

			buffer.PushBack(&message{Kind: JobCreatedKind, Data: []byte("msg1")})
			buffer.PushBack(&message{Kind: JobCreatedKind, Data: []byte("msg2")})
			buffer.PushBack(&message{Kind: JobCreatedKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(3))

			m := buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg1")))
			Expect(buffer.Size()).To(Equal(2))

			m = buffer.Pop()
			Expect(m.Data).To(Equal([]byte("msg2")))
			Expect(buffer.Size()).To(Equal(1))

			m = buffer.Pop()
			Expect(m.Data).To(Equal([]byte("msg3")))
			Expect(buffer.Size()).To(Equal(0))
			Expect(buffer.head).To(BeNil())
			Expect(buffer.tail).To(BeNil())

			Expect(buffer.Pop()).To(BeNil())
		})
	})
})
