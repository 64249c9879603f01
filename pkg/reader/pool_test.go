package reader_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

func TestInternPool(t *testing.T) {
	p := reader.NewInternPool()

	a := p.Intern("value")
	b := p.Intern("value")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, p.Len())

	p.Intern("other")
	assert.Equal(t, 2, p.Len())

	assert.Equal(t, "", p.Intern(""))
	assert.Equal(t, 3, p.Len())
}

func TestInternPoolConcurrent(t *testing.T) {
	p := reader.NewInternPool()
	values := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				for _, v := range values {
					p.Intern(v)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(values), p.Len())
}
