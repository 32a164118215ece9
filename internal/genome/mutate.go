package genome

import (
	"fmt"
	"math/rand"
)

// Mutator applies independent per-site substitution at a fixed rate.
//
// Each site runs one Bernoulli(Rate) trial; on success the base is replaced
// by one of the three other bases chosen uniformly, so a mutation event
// always changes the site's value. The alternative convention (uniform over
// all four bases, allowing silent self-substitution) is deliberately not
// used; with it a rate of 1 would leave a quarter of the sites unchanged.
type Mutator struct {
	Rate float64
}

// Mutate returns a copy of g with per-site substitutions applied. The input
// genome is never modified and the output always has the same length.
func (m Mutator) Mutate(rng *rand.Rand, g Genome) Genome {
	if m.Rate <= 0 {
		return g
	}

	var buf []byte
	for i := 0; i < len(g); i++ {
		if rng.Float64() >= m.Rate {
			continue
		}
		if buf == nil {
			buf = []byte(g)
		}
		buf[i] = substitute(rng, buf[i])
	}
	if buf == nil {
		return g
	}
	return Genome(buf)
}

// substitute picks uniformly among the three bases different from b.
func substitute(rng *rand.Rand, b byte) byte {
	idx := baseIndex(b)
	if idx < 0 {
		panic(fmt.Sprintf("substitute: unknown base %q", b))
	}
	pick := rng.Intn(len(Bases) - 1)
	if pick >= idx {
		pick++
	}
	return Bases[pick]
}
