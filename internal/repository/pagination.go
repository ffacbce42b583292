package repository

import "gorm.io/gorm"

// maxPageSize 单页最大条数
const maxPageSize = 200

// applyPagination 应用分页参数，统一处理非法页码与超限页大小。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
