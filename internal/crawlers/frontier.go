package crawlers

import (
	"fmt"
	"hash/fnv"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/gocolly/colly/v2/storage"
)

// Frontier 待爬集合与已访问集合
// 只由爬取循环持有和修改,不做加锁
//
// 不变量:
//   - pending 中的URL都是规范化URL,且互不重复
//   - 已在 visited 中的URL不会再次进入 pending
//
// 出队顺序为FIFO (按发现顺序),便于复现与测试
type Frontier struct {
	// pending 待爬队列
	pending []models.URLItem

	// queued 当前在pending中的URL
	queued map[string]struct{}

	// visited 已访问集合,以规范化URL的64位哈希为键
	visited storage.Storage

	// visitedCount 已访问URL数
	visitedCount int
}

// NewFrontier 用种子URL创建待爬集合
// 每个种子在入队前规范化;store 为nil时使用内存存储
func NewFrontier(seeds []string, store storage.Storage) (*Frontier, error) {
	if store == nil {
		store = &storage.InMemoryStorage{}
	}
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("初始化已访问集合失败: %w", err)
	}

	f := &Frontier{
		pending: make([]models.URLItem, 0, len(seeds)),
		queued:  make(map[string]struct{}),
		visited: store,
	}

	for _, seed := range seeds {
		canonical, err := models.Canonicalize(seed)
		if err != nil {
			return nil, fmt.Errorf("种子URL无效 [%s]: %w", seed, err)
		}
		f.Push(models.URLItem{URL: canonical})
	}

	return f, nil
}

// Push 将规范化URL加入待爬队列
// 已访问或已在队列中时返回false
func (f *Frontier) Push(item models.URLItem) bool {
	if _, ok := f.queued[item.URL]; ok {
		return false
	}
	if f.IsVisited(item.URL) {
		return false
	}

	f.pending = append(f.pending, item)
	f.queued[item.URL] = struct{}{}
	return true
}

// Pop 取出下一个待爬URL,队列为空时返回false
func (f *Frontier) Pop() (models.URLItem, bool) {
	if len(f.pending) == 0 {
		return models.URLItem{}, false
	}

	item := f.pending[0]
	f.pending[0] = models.URLItem{}
	f.pending = f.pending[1:]
	delete(f.queued, item.URL)
	return item, true
}

// MarkVisited 标记URL为已访问
func (f *Frontier) MarkVisited(canonicalURL string) error {
	if f.IsVisited(canonicalURL) {
		return nil
	}
	if err := f.visited.Visited(urlHash(canonicalURL)); err != nil {
		return fmt.Errorf("记录已访问URL失败: %w", err)
	}
	f.visitedCount++
	return nil
}

// IsVisited 检查URL是否已访问
// 存储出错时按已访问处理,宁可漏抓也不重复抓取
func (f *Frontier) IsVisited(canonicalURL string) bool {
	visited, err := f.visited.IsVisited(urlHash(canonicalURL))
	if err != nil {
		return true
	}
	return visited
}

// PendingCount 返回待爬URL数量
func (f *Frontier) PendingCount() int {
	return len(f.pending)
}

// VisitedCount 返回已访问URL数量
func (f *Frontier) VisitedCount() int {
	return f.visitedCount
}

// urlHash 计算规范化URL的FNV-1a 64位哈希
func urlHash(canonicalURL string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(canonicalURL))
	return h.Sum64()
}
