package blur

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkApply(b *testing.B) {
	src := NewImage(512, 512, 4)
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}

	for _, sigma := range []float64{1, 8, 32} {
		for _, parallelism := range []int{1, 4} {
			b.Run(fmt.Sprintf("sigma=%v/parallelism=%d", sigma, parallelism), func(b *testing.B) {
				p := Params{SigmaX: sigma, SigmaY: sigma, Steps: DefaultSteps, Parallelism: parallelism}
				b.ReportAllocs()
				for b.Loop() {
					if _, err := Apply(context.Background(), p, src); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
