package tracing

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CSVWriter", func() {
	It("should write completed spans as rows", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		w := NewCSVWriter(path)
		w.Init()

		w.Write(Span{
			ID:    "1",
			Kind:  "transition",
			What:  "enter",
			Where: "DPU.Hibernator",
			Start: time.Unix(1, 0),
			End:   time.Unix(2, 500000000),
		})
		w.Flush()

		data, err := os.ReadFile(path + ".csv")
		Expect(err).To(BeNil())

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(Equal("ID, Kind, What, Where, Start, End"))
		Expect(lines[1]).To(Equal(
			"1, transition, enter, DPU.Hibernator, 1.000000000, 2.500000000"))
	})

	It("should buffer spans until flushed", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		w := NewCSVWriter(path)
		w.Init()

		w.Write(Span{ID: "1", Kind: "transition", What: "enter"})

		data, err := os.ReadFile(path + ".csv")
		Expect(err).To(BeNil())
		Expect(strings.Count(string(data), "\n")).To(Equal(1))
	})

	It("should refuse to overwrite an existing trace", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		err := os.WriteFile(path+".csv", nil, 0o644)
		Expect(err).To(BeNil())

		w := NewCSVWriter(path)
		Expect(func() { w.Init() }).To(Panic())
	})
})
