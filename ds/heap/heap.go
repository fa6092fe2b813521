package heap

// 侵入式二叉最小堆
// 元素内嵌Node记录自己在数组中的位置，任意元素删除O(log n)
// 堆只负责排序和定位，不负责元素的分配和释放

// Node 内嵌到堆元素中，位置由堆独占维护
type Node struct {
	pos int // 数组下标+1，0表示不在堆中
}

// InHeap 是否已链接到堆中
func (n *Node) InHeap() bool {
	return n.pos != 0
}

type Elem interface {
	HeapNode() *Node
}

// LessFunc 严格弱序；相等时必须返回false
// 堆本身不保证同序元素的先后，需要确定次序时由less自己破平
type LessFunc[T Elem] func(a, b T) bool

type Heap[T Elem] struct {
	elems []T
	less  LessFunc[T]
}

func NewHeap[T Elem](less LessFunc[T]) *Heap[T] {
	return &Heap[T]{less: less}
}

func (h *Heap[T]) Len() int {
	return len(h.elems)
}

// Min 返回最小元素，不删除
func (h *Heap[T]) Min() (min T, ok bool) {
	if len(h.elems) == 0 {
		return
	}
	return h.elems[0], true
}

// Insert 插入元素并上浮
// x不能已经在某个堆中，由调用者保证
func (h *Heap[T]) Insert(x T) {
	h.elems = append(h.elems, x)
	i := len(h.elems) - 1
	x.HeapNode().pos = i + 1
	h.siftUp(i)
}

// Remove 删除任意元素：和末尾交换后从空出的槽位上浮或下沉
// x必须在堆中，删除不在堆中的元素是调用方的契约错误
func (h *Heap[T]) Remove(x T) {
	i := x.HeapNode().pos - 1
	last := len(h.elems) - 1
	h.swap(i, last)
	var zero T
	h.elems[last] = zero
	h.elems = h.elems[:last]
	x.HeapNode().pos = 0
	if i == last {
		return
	}
	if !h.siftDown(i) {
		h.siftUp(i)
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.elems[i], h.elems[j] = h.elems[j], h.elems[i]
	h.elems[i].HeapNode().pos = i + 1
	h.elems[j].HeapNode().pos = j + 1
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.elems[i], h.elems[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap[T]) siftDown(i int) (moved bool) {
	n := len(h.elems)
	for {
		min := i
		if l := 2*i + 1; l < n && h.less(h.elems[l], h.elems[min]) {
			min = l
		}
		if r := 2*i + 2; r < n && h.less(h.elems[r], h.elems[min]) {
			min = r
		}
		if min == i {
			return
		}
		h.swap(i, min)
		i = min
		moved = true
	}
}
