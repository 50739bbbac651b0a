package monitoring

import (
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/inemuri/dpu"
	"github.com/sarchlab/inemuri/hibernation"
	"github.com/sarchlab/inemuri/worker"
)

type sampleStruct struct {
	field1 int
	field2 string
	field3 *sampleStruct
	field4 []sampleStruct
}

type sampleController struct {
	name string
}

func (c *sampleController) Name() string {
	return c.name
}

func (c *sampleController) State() dpu.State {
	return dpu.StateActive
}

func (c *sampleController) RefreshRate() int {
	return 60
}

func (c *sampleController) EnterHibernation() {
}

func (c *sampleController) ExitHibernation() {
}

func (c *sampleController) ReleaseBandwidth() {
}

func (c *sampleController) Writeback() dpu.Writeback {
	return nil
}

func (c *sampleController) PanelLink() dpu.PanelLink {
	return nil
}

type samplePowerDomain struct {
}

func (samplePowerDomain) Acquire() {
}

func (samplePowerDomain) Release() {
}

func (samplePowerDomain) Active() bool {
	return true
}

type sampleScheduler struct {
}

func (sampleScheduler) Schedule(_ *worker.Task) bool {
	return false
}

func (sampleScheduler) CancelSync(_ *worker.Task) bool {
	return false
}

func newSampleHibernator() *hibernation.Hibernator {
	h, err := hibernation.MakeBuilder().
		WithController(&sampleController{name: "DPU"}).
		WithPowerDomain(samplePowerDomain{}).
		WithScheduler(sampleScheduler{}).
		WithConfig(hibernation.Config{Enabled: true}).
		Register()
	if err != nil {
		panic(err)
	}

	return h
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = &Monitor{}
	})

	It("should register hibernators as components", func() {
		h := newSampleHibernator()

		m.RegisterHibernator(h)

		Expect(m.hibernators).To(HaveLen(1))
		Expect(m.components).To(HaveLen(1))
		Expect(m.components[0].Name()).To(Equal("DPU.Hibernator"))
	})

	It("should register plain components", func() {
		m.RegisterComponent(&sampleController{name: "DPU"})

		Expect(m.components).To(HaveLen(1))
		Expect(m.hibernators).To(BeEmpty())
	})

	It("should walk int fields", func() {
		s := &sampleStruct{
			field1: 1,
		}

		elem, err := m.walkFields(s, "field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Type().Name()).To(Equal("int"))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk string fields", func() {
		s := &sampleStruct{
			field2: "abc",
		}

		elem, err := m.walkFields(s, "field2")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.Type().Name()).To(Equal("string"))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk struct", func() {
		s := &sampleStruct{
			field3: &sampleStruct{},
		}

		elem, err := m.walkFields(s, "field3")

		Expect(err).To(BeNil())

		Expect(elem.Kind()).To(Equal(reflect.Struct))
		Expect(elem.Type().Name()).To(Equal("sampleStruct"))
	})

	It("should walk recursively", func() {
		s := &sampleStruct{
			field3: &sampleStruct{
				field1: 1,
			},
		}

		elem, err := m.walkFields(s, "field3.field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Type().Name()).To(Equal("int"))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk slice", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{}, {}},
		}

		elem, err := m.walkFields(s, "field4")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Slice))
	})

	It("should walk slice recursively", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{
				field4: []sampleStruct{
					{field1: 1},
				},
			}, {}},
		}

		elem, err := m.walkFields(s, "field4.0.field4.0.field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Type().Name()).To(Equal("int"))
		Expect(elem.Int()).To(Equal(int64(1)))
	})
})
