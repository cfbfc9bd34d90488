package mempool

import (
	"strconv"
	"testing"
)

func BenchmarkKernelPool_AllocFree(b *testing.B) {
	for _, size := range []int{16, 200, 4096} {
		b.Run(byteSize(size), func(b *testing.B) {
			kp := newKernel(b, ConfigMedium)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				blk, err := kp.Alloc(size)
				if err != nil {
					b.Fatal(err)
				}
				if err := blk.Free(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkUserPool_AllocFree(b *testing.B) {
	up := newUser(b, ConfigMedium)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := up.Alloc(100)
		if p == nil {
			b.Fatal("alloc failed")
		}
		Free(p)
	}
}

func BenchmarkKernelPool_Parallel(b *testing.B) {
	kp := newKernel(b, ConfigLarge)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			blk, err := kp.Alloc(64)
			if err != nil {
				continue
			}
			_ = blk.Free()
		}
	})
}

func byteSize(n int) string {
	if n >= 1024 {
		return strconv.Itoa(n/1024) + "KB"
	}
	return strconv.Itoa(n) + "B"
}
