package mps

import (
	"math"
	"math/cmplx"
	"sort"
)

// svd computes the thin singular value decomposition of an m x n
// row-major complex matrix, returning u (m x k), s (k), v (n x k) with
// a = u * diag(s) * v-dagger and k = min(m, n), singular values sorted
// descending.
//
// gonum's mat.SVD is real-valued only, so this implements a one-sided
// Jacobi (Hestenes) iteration directly over complex128: columns of a
// working copy are pairwise orthogonalized by right-multiplied plane
// rotations, accumulated into v. Column norms become the singular
// values. For the tensor shapes the simulator produces (up to a few
// hundred rows/columns) its O(k^3)-per-sweep cost is acceptable.
func svd(a []complex128, m, n int) (u []complex128, s []float64, v []complex128) {
	if m < n {
		// SVD of the conjugate transpose swaps the roles of u and v.
		at := make([]complex128, n*m)
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				at[j*m+i] = conj(a[i*n+j])
			}
		}
		vt, st, ut := svd(at, n, m)
		return ut, st, vt
	}

	b := append([]complex128(nil), a...)
	v = make([]complex128, n*n)
	for i := 0; i < n; i++ {
		v[i*n+i] = 1
	}

	const (
		tol       = 1e-14
		maxSweeps = 60
	)
	for sweep := 0; sweep < maxSweeps; sweep++ {
		converged := true
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				var alpha, beta float64
				var gamma complex128
				for k := 0; k < m; k++ {
					bi, bj := b[k*n+i], b[k*n+j]
					alpha += real(bi)*real(bi) + imag(bi)*imag(bi)
					beta += real(bj)*real(bj) + imag(bj)*imag(bj)
					gamma += conj(bi) * bj
				}
				g := cmplx.Abs(gamma)
				if g <= tol*math.Sqrt(alpha*beta) || alpha == 0 || beta == 0 {
					continue
				}
				converged = false

				// Phase-align column j so the inner product is real,
				// then apply the standard real Jacobi rotation.
				phase := gamma / complex(g, 0)
				tau := (beta - alpha) / (2 * g)
				var t float64
				if tau >= 0 {
					t = 1 / (tau + math.Sqrt(1+tau*tau))
				} else {
					t = -1 / (-tau + math.Sqrt(1+tau*tau))
				}
				c := 1 / math.Sqrt(1+t*t)
				sn := c * t

				cc := complex(c, 0)
				sc := complex(sn, 0)
				for k := 0; k < m; k++ {
					bi := b[k*n+i]
					bj := b[k*n+j] * conj(phase)
					b[k*n+i] = cc*bi - sc*bj
					b[k*n+j] = (sc*bi + cc*bj) * phase
				}
				for k := 0; k < n; k++ {
					vi := v[k*n+i]
					vj := v[k*n+j] * conj(phase)
					v[k*n+i] = cc*vi - sc*vj
					v[k*n+j] = (sc*vi + cc*vj) * phase
				}
			}
		}
		if converged {
			break
		}
	}

	s = make([]float64, n)
	for j := 0; j < n; j++ {
		var sq float64
		for k := 0; k < m; k++ {
			c := b[k*n+j]
			sq += real(c)*real(c) + imag(c)*imag(c)
		}
		s[j] = math.Sqrt(sq)
	}

	// Sort columns by singular value, descending. Stable so equal
	// values preserve their relative order.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(x, y int) bool { return s[perm[x]] > s[perm[y]] })

	u = make([]complex128, m*n)
	vOut := make([]complex128, n*n)
	sOut := make([]float64, n)
	for idx, p := range perm {
		sOut[idx] = s[p]
		if s[p] > 0 {
			inv := complex(1/s[p], 0)
			for k := 0; k < m; k++ {
				u[k*n+idx] = b[k*n+p] * inv
			}
		}
		for k := 0; k < n; k++ {
			vOut[k*n+idx] = v[k*n+p]
		}
	}
	return u, sOut, vOut
}
