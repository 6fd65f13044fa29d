package vcf

import "testing"

func TestVariant_Alts(t *testing.T) {
	tests := []struct {
		name string
		alt  string
		want int
	}{
		{"single", "T", 1},
		{"multi-allelic", "T,AG,<DEL>", 3},
		{"missing", ".", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Alt: tt.alt}
			if got := len(v.Alts()); got != tt.want {
				t.Errorf("len(Alts()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVariant_Genotype(t *testing.T) {
	v := &Variant{
		Format:  []string{"DP", "GT"},
		Samples: []string{"12:0/1", "7:1|1", "3"},
	}

	tests := []struct {
		sample int
		want   string
	}{
		{0, "0/1"},
		{1, "1|1"},
		{2, ""}, // truncated sample column
		{3, ""}, // no such sample
		{-1, ""},
	}

	for _, tt := range tests {
		if got := v.Genotype(tt.sample); got != tt.want {
			t.Errorf("Genotype(%d) = %q, want %q", tt.sample, got, tt.want)
		}
	}

	noGT := &Variant{Format: []string{"DP"}, Samples: []string{"12"}}
	if got := noGT.Genotype(0); got != "" {
		t.Errorf("Genotype without GT = %q, want empty", got)
	}
}

func TestVariant_SVLength(t *testing.T) {
	tests := []struct {
		name string
		pos  int64
		info map[string]interface{}
		want int64
	}{
		{"SVLEN", 10, map[string]interface{}{"SVLEN": "-100"}, -100},
		{"multi-allelic SVLEN", 10, map[string]interface{}{"SVLEN": "300,40"}, 300},
		{"END fallback", 10, map[string]interface{}{"END": "60"}, 50},
		{"flag only", 10, map[string]interface{}{"IMPRECISE": true}, 0},
		{"unparseable", 10, map[string]interface{}{"SVLEN": "x"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Pos: tt.pos, Info: tt.info}
			if got := v.SVLength(); got != tt.want {
				t.Errorf("SVLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVariant_NormalizeChrom(t *testing.T) {
	tests := []struct {
		chrom string
		want  string
	}{
		{"chr12", "12"},
		{"12", "12"},
		{"chrX", "X"},
		{"chr", "chr"},
	}

	for _, tt := range tests {
		v := &Variant{Chrom: tt.chrom}
		if got := v.NormalizeChrom(); got != tt.want {
			t.Errorf("NormalizeChrom(%q) = %q, want %q", tt.chrom, got, tt.want)
		}
	}
}
