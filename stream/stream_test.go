package stream

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func divideByTwo(n int) int {
	return n / 2
}

func isNonZero(n int) bool {
	return n != 0
}

func TestStream1(t *testing.T) {
	data := []int{0, 2, 4, 6, 8}
	ctx := context.Background()
	myStream := Slice(ctx, data)
	result := Collect(ctx,
		Transform(ctx, divideByTwo,
			Filter(ctx, isNonZero,
				myStream)))

	if !slices.Equal([]int{1, 2, 3, 4}, result) {
		t.Errorf("Expected [1, 2, 3, 4], got %v", result)
	}
}

func TestStream2(t *testing.T) {
	data := []int{0, 2, 4, 6, 8}
	ctx := context.Background()
	s := Slice(ctx, data)
	tf := Transform(ctx, divideByTwo, s)
	f := Filter(ctx, isNonZero, tf)
	result := Collect(ctx, f)

	if !slices.Equal([]int{1, 2, 3, 4}, result) {
		t.Errorf("Expected [1, 2, 3, 4], got %v", result)
	}
}

func TestLines(t *testing.T) {
	ctx := context.Background()
	lines, errs := Lines(ctx, strings.NewReader("{\"a\":1}\n\n  \n{\"b\":2}\r\n{\"c\":3}"))
	got := Collect(ctx, Transform(ctx, func(b []byte) string { return string(b) }, lines))
	if err := <-errs; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}
	if !slices.Equal(want, got) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestLines_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines, errs := Lines(ctx, strings.NewReader("1\n2\n3\n"))
	<-lines
	cancel()
	// Drain whatever was already on its way.
	for range lines {
	}
	if err := <-errs; err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
}
