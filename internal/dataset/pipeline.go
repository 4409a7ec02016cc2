package dataset

// Output is the product of one pipeline run.
type Output struct {
	Domain      Domain
	Seed        uint64
	GroundTruth []Row
	Raw         []Row
	Result
}

// Run synthesizes, injects and remediates d with a generator seeded once
// from seed. The result depends only on (d, seed).
func Run(d Domain, seed uint64) Output {
	rng := NewRand(seed)
	truth := Synthesize(d, rng)
	raw := Inject(truth, d, rng)
	return Output{
		Domain:      d,
		Seed:        seed,
		GroundTruth: truth,
		Raw:         raw,
		Result:      Remediate(raw, d),
	}
}
