package document

import "testing"

func TestNew(t *testing.T) {
	c := New("Physics Notes")

	if c.Title != "Physics Notes" {
		t.Errorf("Title = %q, want %q", c.Title, "Physics Notes")
	}
	if len(c.Sections) != 1 {
		t.Fatalf("SectionCount = %d, want 1", len(c.Sections))
	}
	if c.Sections[0].Heading != "Section 1" {
		t.Errorf("Heading = %q, want %q", c.Sections[0].Heading, "Section 1")
	}
}

func TestAddSection(t *testing.T) {
	t.Run("append by default", func(t *testing.T) {
		c := New("")
		idx := c.AddSection("Results", -1)

		if idx != 1 {
			t.Errorf("AddSection = %d, want 1", idx)
		}
		if c.Sections[1].Heading != "Results" {
			t.Errorf("Heading = %q, want %q", c.Sections[1].Heading, "Results")
		}
	})

	t.Run("insert at position", func(t *testing.T) {
		c := New("")
		c.AddSection("Last", -1)
		idx := c.AddSection("Middle", 1)

		if idx != 1 {
			t.Errorf("AddSection = %d, want 1", idx)
		}
		if c.Sections[1].Heading != "Middle" || c.Sections[2].Heading != "Last" {
			t.Errorf("order = %q, %q, want Middle, Last",
				c.Sections[1].Heading, c.Sections[2].Heading)
		}
	})

	t.Run("empty heading auto-numbered", func(t *testing.T) {
		c := New("")
		idx := c.AddSection("", -1)

		if c.Sections[idx].Heading != "Section 2" {
			t.Errorf("Heading = %q, want %q", c.Sections[idx].Heading, "Section 2")
		}
	})

	t.Run("out of range position appends", func(t *testing.T) {
		c := New("")
		idx := c.AddSection("Tail", 99)

		if idx != 1 {
			t.Errorf("AddSection = %d, want 1", idx)
		}
	})
}

func TestRemoveSection(t *testing.T) {
	t.Run("refuses to leave zero sections", func(t *testing.T) {
		c := New("")
		if c.RemoveSection(0) {
			t.Error("RemoveSection should refuse removing the last section")
		}
		if len(c.Sections) != 1 {
			t.Errorf("SectionCount = %d, want 1", len(c.Sections))
		}
	})

	t.Run("removes when more than one remains", func(t *testing.T) {
		c := New("")
		c.AddSection("Second", -1)
		if !c.RemoveSection(0) {
			t.Fatal("RemoveSection returned false")
		}
		if c.Sections[0].Heading != "Second" {
			t.Errorf("Heading = %q, want %q", c.Sections[0].Heading, "Second")
		}
	})

	t.Run("out of range", func(t *testing.T) {
		c := New("")
		c.AddSection("Second", -1)
		if c.RemoveSection(5) {
			t.Error("RemoveSection(5) should return false")
		}
		if c.RemoveSection(-1) {
			t.Error("RemoveSection(-1) should return false")
		}
	})
}

func TestMoveSection(t *testing.T) {
	c := New("")
	c.AddSection("B", -1)

	t.Run("swaps sections", func(t *testing.T) {
		if !c.MoveSection(0, 1) {
			t.Fatal("MoveSection returned false")
		}
		if c.Sections[0].Heading != "B" {
			t.Errorf("Heading[0] = %q, want B", c.Sections[0].Heading)
		}
	})

	t.Run("equal indices no-op", func(t *testing.T) {
		before := c.Revision()
		if c.MoveSection(1, 1) {
			t.Error("MoveSection(1, 1) should return false")
		}
		if c.Revision() != before {
			t.Error("refused move must not bump the revision")
		}
	})

	t.Run("out of range no-op", func(t *testing.T) {
		if c.MoveSection(0, 7) {
			t.Error("MoveSection(0, 7) should return false")
		}
	})
}

func TestDuplicateSection(t *testing.T) {
	c := New("")
	c.Sections[0].Text = "intro text"
	c.AddFormula(0, "e=mc^2", 5, true)

	idx := c.DuplicateSection(0)
	if idx != 1 {
		t.Fatalf("DuplicateSection = %d, want 1", idx)
	}

	dup := c.Sections[1]
	if dup.Heading != "Section 1 (copy)" {
		t.Errorf("Heading = %q, want %q", dup.Heading, "Section 1 (copy)")
	}
	if dup.Text != "intro text" || len(dup.Formulas) != 1 {
		t.Errorf("duplicate content = %q/%d formulas, want intro text/1", dup.Text, len(dup.Formulas))
	}

	// Deep copy: mutating the duplicate leaves the source untouched.
	c.Sections[1].Formulas[0].LaTeX = "changed"
	if c.Sections[0].Formulas[0].LaTeX != "e=mc^2" {
		t.Error("duplicate shares formula storage with the source")
	}

	if c.DuplicateSection(9) != -1 {
		t.Error("DuplicateSection(9) should return -1")
	}
}

func TestAddFormula(t *testing.T) {
	t.Run("default position appends at text end", func(t *testing.T) {
		c := New("")
		c.Sections[0].Text = "0123456789"
		idx := c.AddFormula(0, "x", -1, true)

		if idx != 0 {
			t.Fatalf("AddFormula = %d, want 0", idx)
		}
		if got := c.Sections[0].Formulas[0].Position; got != 10 {
			t.Errorf("Position = %d, want 10", got)
		}
	})

	t.Run("explicit position stored unclamped", func(t *testing.T) {
		c := New("")
		c.Sections[0].Text = "0123456789"
		c.AddFormula(0, "x", 11, false)

		if got := c.Sections[0].Formulas[0].Position; got != 11 {
			t.Errorf("Position = %d, want 11 (never clamped)", got)
		}
	})

	t.Run("bad section index", func(t *testing.T) {
		c := New("")
		if c.AddFormula(3, "x", 0, false) != -1 {
			t.Error("AddFormula with bad section index should return -1")
		}
	})
}

func TestRemoveAndUpdateFormula(t *testing.T) {
	c := New("")
	c.Sections[0].Text = "some text"
	c.AddFormula(0, "a", 0, true)
	c.AddFormula(0, "b", 4, false)

	if !c.UpdateFormula(0, 1, Formula{LaTeX: "b'", Position: 2, Inline: true}) {
		t.Fatal("UpdateFormula returned false")
	}
	if got := c.Sections[0].Formulas[1].LaTeX; got != "b'" {
		t.Errorf("LaTeX = %q, want b'", got)
	}

	if !c.RemoveFormula(0, 0) {
		t.Fatal("RemoveFormula returned false")
	}
	if len(c.Sections[0].Formulas) != 1 {
		t.Errorf("formula count = %d, want 1", len(c.Sections[0].Formulas))
	}

	if c.RemoveFormula(0, 9) {
		t.Error("RemoveFormula out of range should return false")
	}
	if c.UpdateFormula(2, 0, Formula{}) {
		t.Error("UpdateFormula with bad section should return false")
	}
}

func TestEqual(t *testing.T) {
	build := func() *Content {
		c := New("Doc")
		c.Sections[0].Text = "hello"
		c.AddFormula(0, "x+y", 5, true)
		return c
	}

	a, b := build(), build()
	if !a.Equal(b) {
		t.Error("structurally identical documents must compare equal")
	}

	b.Sections[0].Formulas[0].Position = 4
	if a.Equal(b) {
		t.Error("differing formula position must compare unequal")
	}

	clone := a.Clone()
	if !a.Equal(clone) {
		t.Error("clone must compare equal to its source")
	}
	if clone.Revision() == a.Revision() {
		t.Error("clone must carry a fresh revision")
	}
}

func TestRevisionBumps(t *testing.T) {
	c := New("")
	rev := c.Revision()

	c.UpdateSection(0, "H", "text")
	if c.Revision() == rev {
		t.Error("UpdateSection must bump the revision")
	}

	rev = c.Revision()
	if c.UpdateSection(4, "H", "text") {
		t.Fatal("out-of-range UpdateSection should return false")
	}
	if c.Revision() != rev {
		t.Error("refused mutation must not bump the revision")
	}
}

func TestAggregateQueries(t *testing.T) {
	c := New("")
	c.Sections[0].Text = "first"
	c.AddFormula(0, "a", 0, true)
	c.AddSection("More", -1)
	c.UpdateSection(1, "More", "second")
	c.AddFormula(1, "b", 0, false)
	c.AddFormula(1, "c", 3, true)

	if got := c.FormulaCount(); got != 3 {
		t.Errorf("FormulaCount = %d, want 3", got)
	}
	want := []string{"a", "b", "c"}
	got := c.AllLaTeX()
	if len(got) != len(want) {
		t.Fatalf("AllLaTeX len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllLaTeX[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
