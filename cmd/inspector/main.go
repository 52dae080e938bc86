// Command inspector reads finished trainset shards and reports what they
// contain. It checks every record for the full field set, verifies that
// vector lengths stay consistent across the set, and prints label and
// category tallies. A non-zero exit means at least one record failed a check.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfexample"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfrecord"
)

var intFields = []string{
	tfexample.FieldTextLength,
	tfexample.FieldCategoryID,
	tfexample.FieldPrice,
	tfexample.FieldImagesCount,
	tfexample.FieldRecentArticlesCount,
	tfexample.FieldTitleLength,
	tfexample.FieldContentLength,
}

type report struct {
	files      int
	records    int
	invalid    int
	embeddingN int
	textN      int
	extraN     int
	labels     map[int64]int
	categories map[int64]int
}

func main() {
	path := flag.String("path", "", "shard file or directory of shards")
	wordDim := flag.Int("word-dim", 0, "per-word embedding width, 0 skips text length checks")
	totalCategories := flag.Int("total-categories", 0, "category count, 0 skips category range checks")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	fs := afero.NewOsFs()
	shards, err := listShards(fs, *path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rep := &report{
		embeddingN: -1,
		textN:      -1,
		extraN:     -1,
		labels:     make(map[int64]int),
		categories: make(map[int64]int),
	}
	for _, shard := range shards {
		if err := inspectShard(fs, shard, *wordDim, *totalCategories, rep); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", shard, err)
			os.Exit(1)
		}
	}
	rep.print()
	if rep.invalid > 0 {
		os.Exit(1)
	}
}

func listShards(fs afero.Fs, path string) ([]string, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var shards []string
	err = afero.Walk(fs, path, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fi.IsDir() {
			return nil
		}
		if strings.HasSuffix(p, ".tfrecord.gz") {
			shards = append(shards, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("no shard files under %s", path)
	}
	sort.Strings(shards)
	return shards, nil
}

func inspectShard(fs afero.Fs, path string, wordDim, totalCategories int, rep *report) error {
	reader, err := tfrecord.OpenShard(fs, path)
	if err != nil {
		return err
	}
	defer reader.Close()
	rep.files++

	for recordIdx := 0; ; recordIdx++ {
		payload, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", recordIdx, err)
		}
		example, err := tfexample.Unmarshal(payload)
		if err != nil {
			return fmt.Errorf("record %d: %w", recordIdx, err)
		}
		rep.records++
		for _, problem := range checkRecord(example, wordDim, totalCategories, rep) {
			rep.invalid++
			fmt.Fprintf(os.Stderr, "%s record %d: %s\n", filepath.Base(path), recordIdx, problem)
		}
	}
}

// checkRecord validates one example and folds its tallies into the report.
// Vector widths are pinned by the first record seen, every later record has
// to match it.
func checkRecord(example *tfexample.Example, wordDim, totalCategories int, rep *report) []string {
	var problems []string

	if f, ok := example.Feature(tfexample.FieldID); !ok || f.Kind != tfexample.KindBytes || len(f.Bytes) != 1 {
		problems = append(problems, "missing or malformed id")
	}
	if f, ok := example.Feature(tfexample.FieldBlocksInline); !ok || f.Kind != tfexample.KindBytes || len(f.Bytes) != 1 {
		problems = append(problems, "missing or malformed blocks_inline")
	}
	if f, ok := example.Feature(tfexample.FieldUserName); !ok || f.Kind != tfexample.KindBytes || len(f.Bytes) != 1 {
		problems = append(problems, "missing or malformed user_name")
	}

	for _, name := range intFields {
		f, ok := example.Feature(name)
		if !ok || f.Kind != tfexample.KindInts || len(f.Ints) != 1 {
			problems = append(problems, "missing or malformed "+name)
		}
	}

	problems = append(problems, checkFloats(example, tfexample.FieldEmbedding, &rep.embeddingN)...)
	problems = append(problems, checkFloats(example, tfexample.FieldTextEmbedding, &rep.textN)...)
	problems = append(problems, checkFloats(example, tfexample.FieldExtraEmbedding, &rep.extraN)...)

	if wordDim > 0 {
		text, textOK := example.Feature(tfexample.FieldTextEmbedding)
		length, lengthOK := example.Feature(tfexample.FieldTextLength)
		if textOK && lengthOK && length.Kind == tfexample.KindInts && len(length.Ints) == 1 {
			if len(text.Floats)%wordDim != 0 {
				problems = append(problems, fmt.Sprintf("text_embedding length %d not a multiple of word dim %d", len(text.Floats), wordDim))
			} else if words := int64(len(text.Floats) / wordDim); length.Ints[0] < 0 || length.Ints[0] > words {
				problems = append(problems, fmt.Sprintf("text_length %d outside 0..%d", length.Ints[0], words))
			}
		}
	}

	if f, ok := example.Feature(tfexample.FieldCategoryID); ok && f.Kind == tfexample.KindInts && len(f.Ints) == 1 {
		rep.categories[f.Ints[0]]++
		if totalCategories > 0 && (f.Ints[0] < 1 || f.Ints[0] > int64(totalCategories)) {
			problems = append(problems, fmt.Sprintf("category_id %d outside 1..%d", f.Ints[0], totalCategories))
		}
	}

	if f, ok := example.Feature(tfexample.FieldLabel); !ok || f.Kind != tfexample.KindInts {
		problems = append(problems, "missing or malformed label")
	} else {
		for _, idx := range f.Ints {
			rep.labels[idx]++
		}
	}
	return problems
}

func checkFloats(example *tfexample.Example, name string, width *int) []string {
	f, ok := example.Feature(name)
	if !ok || f.Kind != tfexample.KindFloats {
		return []string{"missing or malformed " + name}
	}
	if *width < 0 {
		*width = len(f.Floats)
		return nil
	}
	if len(f.Floats) != *width {
		return []string{fmt.Sprintf("%s length %d, expected %d", name, len(f.Floats), *width)}
	}
	return nil
}

func (r *report) print() {
	fmt.Printf("shards:   %d\n", r.files)
	fmt.Printf("records:  %d\n", r.records)
	fmt.Printf("invalid:  %d\n", r.invalid)
	if r.records == 0 {
		return
	}
	fmt.Printf("widths:   embedding=%d text_embedding=%d extra_embedding=%d\n", r.embeddingN, r.textN, r.extraN)
	fmt.Println("labels:")
	for _, idx := range sortedKeys(r.labels) {
		fmt.Printf("  %6d  %d\n", idx, r.labels[idx])
	}
	fmt.Println("categories:")
	for _, id := range sortedKeys(r.categories) {
		fmt.Printf("  %6d  %d\n", id, r.categories[id])
	}
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
