package main

import (
	"github.com/joshuapare/quadpool/mempool"
)

// target adapts both pool kinds to the workload loops.
type target struct {
	pool *mempool.Pool

	// alloc returns the allocation's memory and a function that frees it.
	alloc func(size int) (data []byte, release func() error, ok bool)
	close func() error
}

func openTarget(cfg mempool.Config) (*target, error) {
	if cfg.Kind == mempool.KindUser {
		up, err := mempool.NewUser(cfg)
		if err != nil {
			return nil, err
		}
		return &target{
			pool: up.Pool,
			alloc: func(size int) ([]byte, func() error, bool) {
				b := up.Alloc(size)
				if b == nil {
					return nil, nil, false
				}
				return b, func() error { return mempool.FreeErr(b) }, true
			},
			close: up.Close,
		}, nil
	}

	kp, err := mempool.NewKernel(cfg)
	if err != nil {
		return nil, err
	}
	return &target{
		pool: kp.Pool,
		alloc: func(size int) ([]byte, func() error, bool) {
			blk, err := kp.Alloc(size)
			if err != nil {
				return nil, nil, false
			}
			return blk.Data, blk.Free, true
		},
		close: kp.Close,
	}, nil
}
