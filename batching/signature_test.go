package batching

import (
	"testing"
)

func TestSignature_OrderAndDuplicatesIrrelevant(t *testing.T) {
	// GIVEN signatures built from permuted and duplicated name lists
	a := NewSignature([]string{"x", "w"}, []string{"y", "z"})
	b := NewSignature([]string{"w", "x", "w"}, []string{"z", "y", "y"})

	// THEN they compare equal and collide as map keys
	if a != b {
		t.Fatalf("signatures differ: %s vs %s", a, b)
	}
	m := map[Signature]int{a: 1}
	if m[b] != 1 {
		t.Error("permuted signature does not hit the same map entry")
	}
}

func TestSignature_DistinctSetsDiffer(t *testing.T) {
	a := NewSignature([]string{"x"}, []string{"y"})
	b := NewSignature([]string{"x2"}, []string{"y"})
	c := NewSignature([]string{"x"}, []string{"y2"})
	if a == b {
		t.Error("differing input sets compare equal")
	}
	if a == c {
		t.Error("differing output sets compare equal")
	}
}

func TestSignature_NamesAreSortedAndStable(t *testing.T) {
	s := NewSignature([]string{"b", "a", "c"}, []string{"z", "y"})
	in := s.InputNames()
	want := []string{"a", "b", "c"}
	if len(in) != len(want) {
		t.Fatalf("InputNames length: got %d, want %d", len(in), len(want))
	}
	for i := range want {
		if in[i] != want[i] {
			t.Errorf("InputNames[%d]: got %q, want %q", i, in[i], want[i])
		}
	}
	out := s.OutputNames()
	if out[0] != "y" || out[1] != "z" {
		t.Errorf("OutputNames: got %v, want [y z]", out)
	}
}

func TestSignature_Empty(t *testing.T) {
	s := NewSignature(nil, nil)
	if s.InputNames() != nil || s.OutputNames() != nil {
		t.Errorf("empty signature names: got %v / %v, want nil / nil", s.InputNames(), s.OutputNames())
	}
	if s != (Signature{}) {
		t.Error("empty signature differs from the zero value")
	}
}

func TestSignatureFromSignatureDefs_UnionsTensorNames(t *testing.T) {
	// GIVEN two exported signatures with overlapping tensors
	classify := SignatureDef{
		Inputs:  map[string]TensorInfo{"input": {Name: "x:0"}},
		Outputs: map[string]TensorInfo{"scores": {Name: "y:0"}},
	}
	regress := SignatureDef{
		Inputs:  map[string]TensorInfo{"input": {Name: "x:0"}},
		Outputs: map[string]TensorInfo{"value": {Name: "v:0"}},
	}

	// WHEN a signature is built over both
	s := SignatureFromSignatureDefs([]SignatureDef{classify, regress})

	// THEN the tensor name sets are unioned
	want := NewSignature([]string{"x:0"}, []string{"y:0", "v:0"})
	if s != want {
		t.Fatalf("union signature: got %s, want %s", s, want)
	}
	if single := SignatureFromSignatureDef(classify); single != NewSignature([]string{"x:0"}, []string{"y:0"}) {
		t.Errorf("single-def signature: got %s", single)
	}
}

func TestSignature_StringListsBothSets(t *testing.T) {
	s := NewSignature([]string{"x"}, []string{"y", "z"})
	want := "{input_tensors: <x>, output_tensors: <y, z>}"
	if s.String() != want {
		t.Errorf("String: got %q, want %q", s.String(), want)
	}
}
