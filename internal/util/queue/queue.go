// Package queue 提供单链表实现的泛型 FIFO 队列
//
// Queue 本身不做并发保护，也不限制容量；加锁和限长由调用方负责
// （见 neighbor.Directory 与 mailbox.Mailbox）。
package queue

// node 链表节点
type node[T any] struct {
	value T
	next  *node[T]
}

// Queue 泛型 FIFO 队列
//
// 不变量：length 等于节点数；front 与 rear 同时为 nil 当且仅当 length 为 0。
// 元素在移除或 Clear 时释放一次（节点断链、值清零）。
type Queue[T any] struct {
	front  *node[T]
	rear   *node[T]
	length int
}

// New 创建空队列
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Len 返回元素个数
func (q *Queue[T]) Len() int {
	return q.length
}

// Enqueue 追加到队尾，O(1)
func (q *Queue[T]) Enqueue(v T) {
	n := &node[T]{value: v}
	if q.rear == nil {
		q.front = n
	} else {
		q.rear.next = n
	}
	q.rear = n
	q.length++
}

// AddFront 插入到队头，O(1)
func (q *Queue[T]) AddFront(v T) {
	n := &node[T]{value: v, next: q.front}
	q.front = n
	if q.rear == nil {
		q.rear = n
	}
	q.length++
}

// Dequeue 取出队头元素，队列为空时返回 false，O(1)
func (q *Queue[T]) Dequeue() (T, bool) {
	if q.front == nil {
		var zero T
		return zero, false
	}
	n := q.front
	q.front = n.next
	if q.front == nil {
		q.rear = nil
	}
	q.length--
	return release(n), true
}

// RemoveAt 移除下标 i 处的元素
//
// 节点被摘出链表；若移除的是最后一个节点则同步更新 rear。
func (q *Queue[T]) RemoveAt(i int) (T, bool) {
	if i < 0 || i >= q.length {
		var zero T
		return zero, false
	}
	if i == 0 {
		return q.Dequeue()
	}

	prev := q.front
	for j := 0; j < i-1; j++ {
		prev = prev.next
	}
	n := prev.next
	prev.next = n.next
	if n == q.rear {
		q.rear = prev
	}
	q.length--
	return release(n), true
}

// GetAt 返回下标 i 处的元素，不移除
func (q *Queue[T]) GetAt(i int) (T, bool) {
	if i < 0 || i >= q.length {
		var zero T
		return zero, false
	}
	n := q.front
	for j := 0; j < i; j++ {
		n = n.next
	}
	return n.value, true
}

// ForEach 从队头到队尾依次访问每个元素
func (q *Queue[T]) ForEach(f func(T)) {
	for n := q.front; n != nil; n = n.next {
		f(n.value)
	}
}

// FirstIndexOf 返回第一个与 v 相等的元素下标，找不到返回 -1
//
// eq 为 nil 时按同一性比较（any(a) == any(b)），T 必须是可比较类型，
// 否则比较会 panic。
func (q *Queue[T]) FirstIndexOf(v T, eq func(a, b T) bool) int {
	if eq == nil {
		eq = identical[T]
	}
	i := 0
	for n := q.front; n != nil; n = n.next {
		if eq(n.value, v) {
			return i
		}
		i++
	}
	return -1
}

// IndexFunc 返回第一个满足 pred 的元素下标，找不到返回 -1
func (q *Queue[T]) IndexFunc(pred func(T) bool) int {
	i := 0
	for n := q.front; n != nil; n = n.next {
		if pred(n.value) {
			return i
		}
		i++
	}
	return -1
}

// Slice 按队列顺序返回元素副本
func (q *Queue[T]) Slice() []T {
	out := make([]T, 0, q.length)
	for n := q.front; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

// Clear 释放全部元素，返回释放的个数
func (q *Queue[T]) Clear() int {
	count := q.length
	for q.front != nil {
		n := q.front
		q.front = n.next
		release(n)
	}
	q.rear = nil
	q.length = 0
	return count
}

// release 断开节点并清零其值，返回原值
func release[T any](n *node[T]) T {
	v := n.value
	var zero T
	n.value = zero
	n.next = nil
	return v
}

func identical[T any](a, b T) bool {
	return any(a) == any(b)
}
