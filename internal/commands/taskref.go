package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tasklane/internal/output"
	"tasklane/internal/state"
)

// TaskRef represents a parsed task reference such as "a3".
type TaskRef struct {
	Letter  rune // list letter, 'a'-'z'
	TaskNum int  // 1-based task number within the list
}

func (r TaskRef) String() string {
	return output.Ref(r.Letter, r.TaskNum)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args → ErrTaskRefRequired
// 2. <letter><digits> (e.g., a1, b12) → combined reference
// 3. <letter> followed by an all-digit arg (a 1) → separated reference
// 4. Anything else → error: invalid task reference: <ref>
//
// It returns the number of args consumed.
func ParseTaskRef(args []string) (TaskRef, int, error) {
	if len(args) == 0 {
		return TaskRef{}, 0, ErrTaskRefRequired
	}

	first := args[0]
	if first == "" || !isLetter(rune(first[0])) {
		return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s", first)
	}
	letter := rune(first[0])

	if len(first) > 1 {
		num, ok := parseNum(first[1:])
		if !ok {
			return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s", first)
		}
		return TaskRef{Letter: letter, TaskNum: num}, 1, nil
	}

	if len(args) < 2 {
		return TaskRef{}, 0, ErrTaskRefRequired
	}
	num, ok := parseNum(args[1])
	if !ok {
		return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s", first)
	}
	return TaskRef{Letter: letter, TaskNum: num}, 2, nil
}

// ParseTaskNum parses a bare task number such as "3" or "#3", used with a
// list named by --list. It returns the number of args consumed.
func ParseTaskNum(args []string) (int, int, error) {
	if len(args) == 0 {
		return 0, 0, ErrTaskRefRequired
	}
	num, ok := parseNum(strings.TrimPrefix(args[0], "#"))
	if !ok {
		return 0, 0, fmt.Errorf("invalid task number: %s", args[0])
	}
	return num, 1, nil
}

func parseNum(s string) (int, bool) {
	if !isAllDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// ResolveListByLetter returns the list shown under letter on the board.
func ResolveListByLetter(board []state.ListView, letter rune) (state.ListView, error) {
	for i, lv := range board {
		if l, ok := output.Letter(i); ok && l == letter {
			return lv, nil
		}
	}
	return state.ListView{}, fmt.Errorf("list letter not found: %c", letter)
}

// ResolveList finds a list by name (case-insensitive, trimmed) or, failing
// that, by board letter.
func ResolveList(board []state.ListView, arg string) (state.ListView, error) {
	name := strings.TrimSpace(arg)
	nameLower := strings.ToLower(name)
	if name == "" {
		return state.ListView{}, errors.New("list name required")
	}

	var matches []state.ListView
	for _, lv := range board {
		if strings.ToLower(strings.TrimSpace(lv.List.Name)) == nameLower {
			matches = append(matches, lv)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if len(name) == 1 && isLetter(rune(name[0])) {
			if lv, err := ResolveListByLetter(board, rune(name[0])); err == nil {
				return lv, nil
			}
		}
		return state.ListView{}, fmt.Errorf("list not found: %s", name)
	default:
		return state.ListView{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// ResolveTask finds the task ref points at on the board.
func ResolveTask(board []state.ListView, ref TaskRef) (state.ListView, state.TaskView, error) {
	lv, err := ResolveListByLetter(board, ref.Letter)
	if err != nil {
		return state.ListView{}, state.TaskView{}, err
	}
	return taskAt(lv, ref.TaskNum)
}

// TaskSelector names a task either by ref, or by number within a list
// given by name. Lists without a letter are only reachable by name.
type TaskSelector struct {
	Ref  TaskRef
	List string // list name or letter; Num applies when set
	Num  int
}

// ParseTaskSelector parses the task part of args. With listArg set, args
// start with a task number; otherwise with a task ref.
// It returns the number of args consumed.
func ParseTaskSelector(listArg string, args []string) (TaskSelector, int, error) {
	if listArg == "" {
		ref, n, err := ParseTaskRef(args)
		return TaskSelector{Ref: ref}, n, err
	}
	num, n, err := ParseTaskNum(args)
	return TaskSelector{List: listArg, Num: num}, n, err
}

// Resolve finds the selected task on the board.
func (s TaskSelector) Resolve(board []state.ListView) (state.ListView, state.TaskView, error) {
	if s.List == "" {
		return ResolveTask(board, s.Ref)
	}
	lv, err := ResolveList(board, s.List)
	if err != nil {
		return state.ListView{}, state.TaskView{}, err
	}
	return taskAt(lv, s.Num)
}

func taskAt(lv state.ListView, num int) (state.ListView, state.TaskView, error) {
	tasks := lv.Tasks()
	if num < 1 || num > len(tasks) {
		return state.ListView{}, state.TaskView{}, fmt.Errorf("task number out of range: %d", num)
	}
	return lv, tasks[num-1], nil
}
