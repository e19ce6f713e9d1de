package models

import "strings"

// Cookie 单个cookie键值对
type Cookie struct {
	Name  string
	Value string
}

// CookieTable 域名 -> (cookie名 -> 值) 的映射
// 域名保存为文件中的原始写法(可能带前导 "."),按文件顺序记录
// 启动时构建一次,之后只读
type CookieTable struct {
	domains []string
	rows    map[string]*cookieRow
}

// cookieRow 单个域名下的cookie,保留首次出现的顺序
type cookieRow struct {
	names  []string
	values map[string]string
}

// NewCookieTable 创建空的cookie表
func NewCookieTable() *CookieTable {
	return &CookieTable{
		rows: make(map[string]*cookieRow),
	}
}

// Set 记录一个cookie,同域同名时后者覆盖前者
func (t *CookieTable) Set(domain, name, value string) {
	row, ok := t.rows[domain]
	if !ok {
		row = &cookieRow{values: make(map[string]string)}
		t.rows[domain] = row
		t.domains = append(t.domains, domain)
	}
	if _, exists := row.values[name]; !exists {
		row.names = append(row.names, name)
	}
	row.values[name] = value
}

// Get 查询指定域名下的cookie值
func (t *CookieTable) Get(domain, name string) (string, bool) {
	row, ok := t.rows[domain]
	if !ok {
		return "", false
	}
	v, ok := row.values[name]
	return v, ok
}

// Domains 返回按文件顺序排列的域名列表
func (t *CookieTable) Domains() []string {
	out := make([]string, len(t.domains))
	copy(out, t.domains)
	return out
}

// Len 返回cookie总数
func (t *CookieTable) Len() int {
	n := 0
	for _, row := range t.rows {
		n += len(row.names)
	}
	return n
}

// Match 返回适用于目标主机的全部cookie
// 按文件中的域名顺序合并,同名cookie以后出现者为准
func (t *CookieTable) Match(host string) []Cookie {
	if t == nil {
		return nil
	}

	var names []string
	values := make(map[string]string)

	for _, domain := range t.domains {
		if !DomainMatches(domain, host) {
			continue
		}
		row := t.rows[domain]
		for _, name := range row.names {
			if _, seen := values[name]; !seen {
				names = append(names, name)
			}
			values[name] = row.values[name]
		}
	}

	cookies := make([]Cookie, 0, len(names))
	for _, name := range names {
		cookies = append(cookies, Cookie{Name: name, Value: values[name]})
	}
	return cookies
}

// HeaderFor 生成目标主机的 Cookie 头部值 ("a=1; b=2"),无匹配时返回空串
func (t *CookieTable) HeaderFor(host string) string {
	cookies := t.Match(host)
	if len(cookies) == 0 {
		return ""
	}

	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// DomainMatches 判断cookie域名是否适用于目标主机
// 双方先去掉端口;完全相等,或去掉一个前导 "." 后主机以 ".域名" 结尾
// 例如 ".example.com" 匹配 example.com 与 www.example.com,不匹配 notexample.com
func DomainMatches(stored, host string) bool {
	stored = strings.ToLower(StripPort(stored))
	host = strings.ToLower(StripPort(host))
	if stored == "" || host == "" {
		return false
	}

	if stored == host {
		return true
	}

	bare := strings.TrimPrefix(stored, ".")
	if bare == "" {
		return false
	}
	return host == bare || strings.HasSuffix(host, "."+bare)
}

// StripPort 去掉 host[:port] 中的端口,支持 [IPv6]:port
func StripPort(hostport string) string {
	if strings.HasPrefix(hostport, "[") {
		if i := strings.Index(hostport, "]"); i >= 0 {
			return hostport[:i+1]
		}
		return hostport
	}
	if strings.Count(hostport, ":") == 1 {
		return hostport[:strings.Index(hostport, ":")]
	}
	return hostport
}
