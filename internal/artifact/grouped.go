package artifact

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nftsets/internal/dataset"
)

// WriteGroupedSplit writes one split as grouped lines: the mapped user id
// first, then that user's items in row order, space separated. Users are
// emitted in ascending id order. This is the layout graph recommenders
// load directly.
func WriteGroupedSplit(path string, rows []dataset.Encoded) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	users, byUser := dataset.GroupByUser(rows)
	for _, u := range users {
		fields := make([]string, 1, len(byUser[u])+1)
		fields[0] = strconv.Itoa(u)
		for _, item := range byUser[u] {
			fields = append(fields, strconv.Itoa(item))
		}
		if _, err := w.WriteString(strings.Join(fields, " ") + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadGroupedSplit parses a grouped split file back into per-user item
// lists plus the user order on disk.
func ReadGroupedSplit(path string) ([]int, map[int][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	users := make([]int, 0)
	byUser := map[int][]int{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		u, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: bad user id %q", path, line, fields[0])
		}
		items := make([]int, 0, len(fields)-1)
		for _, fstr := range fields[1:] {
			it, err := strconv.Atoi(fstr)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: bad item id %q", path, line, fstr)
			}
			items = append(items, it)
		}
		users = append(users, u)
		byUser[u] = items
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return users, byUser, nil
}
