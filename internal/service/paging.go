package service

// pageBounds returns the slice bounds of a 1-based page over total items.
// Pages past the end yield an empty window without computing (page-1)*size,
// so arbitrarily large page numbers cannot overflow.
func pageBounds(page, size, total int) (start, end int) {
	if page <= 0 || size <= 0 || page-1 > total/size {
		return total, total
	}
	start = (page - 1) * size
	end = total
	if size < total-start {
		end = start + size
	}
	return start, end
}
