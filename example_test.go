package filearray_test

import (
	"cmp"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/hupe1980/filearray"
)

// Example_sortDescending fills a fresh array, sorts it in place through the
// mapped slice and persists the result.
func Example_sortDescending() {
	dir, err := os.MkdirTemp("", "filearray")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "t.bin")

	arr, err := filearray.OpenOrCreate[int32](path, 5)
	if err != nil {
		log.Fatal(err)
	}

	for i := range arr.Len() {
		arr.Set(i, int32(i))
	}

	slices.SortFunc(arr.Data(), func(a, b int32) int {
		return cmp.Compare(b, a)
	})

	if err := arr.Flush(); err != nil {
		log.Fatal(err)
	}
	if err := arr.Close(); err != nil {
		log.Fatal(err)
	}

	reopened, err := filearray.Open[int32](path)
	if err != nil {
		log.Fatal(err)
	}
	defer reopened.Close()

	fmt.Println(reopened.Data())
	// Output: [4 3 2 1 0]
}

// Example_structElements stores fixed-size records directly in the file.
func Example_structElements() {
	type sample struct {
		ID    uint32
		Score float32
	}

	dir, err := os.MkdirTemp("", "filearray")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	arr, err := filearray.Create[sample](filepath.Join(dir, "samples.bin"), 10)
	if err != nil {
		log.Fatal(err)
	}
	defer arr.Close()

	arr.Set(3, sample{ID: 42, Score: 0.5})

	for i, s := range arr.All() {
		if s.ID != 0 {
			fmt.Printf("record %d: id=%d score=%v\n", i, s.ID, s.Score)
		}
	}
	// Output: record 3: id=42 score=0.5
}
