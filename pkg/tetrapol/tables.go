package tetrapol

// These tables are bit-exact constants mandated by PAS 0001-2. They must
// not be regenerated or approximated; §6.1.4/§6.2.4 of the standard define
// them precisely and downstream decode correctness depends on every entry.

// scrambTable is the 127-bit LFSR scrambling sequence (PAS 0001-2
// §6.1.5.1/§6.2.5.1/§6.3.4.1), generated by s[0..6] = 1 and
// s[k] = s[k-1] XOR s[k-7] for k in [7,126].
var scrambTable = [127]byte{
	1, 1, 1, 1, 1, 1, 1, 0,
	1, 0, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 1, 1, 0, 1,
	1, 1, 0, 1, 0, 0, 1, 0,
	1, 1, 0, 0, 0, 1, 1, 0,
	1, 1, 1, 1, 0, 1, 1, 0,
	1, 0, 1, 1, 0, 1, 1, 0,
	0, 1, 0, 0, 1, 0, 0, 0,
	1, 1, 1, 0, 0, 0, 0, 1,
	0, 1, 1, 1, 1, 1, 0, 0,
	1, 0, 1, 0, 1, 1, 1, 0,
	0, 1, 1, 0, 1, 0, 0, 0,
	1, 0, 0, 1, 1, 1, 1, 0,
	0, 0, 1, 0, 1, 0, 0, 0,
	0, 1, 1, 0, 0, 0, 0, 0,
	1, 0, 0, 0, 0, 0, 0,
}

// interleaveDataUHF is the UHF control/data deinterleave permutation
// (PAS 0001-2 §6.2.4.1): out[j] = in[interleaveDataUHF[j]].
var interleaveDataUHF = [FrameDataLen]byte{
	1, 77, 38, 114, 20, 96, 59, 135,
	3, 79, 41, 117, 23, 99, 62, 138,
	5, 81, 44, 120, 26, 102, 65, 141,
	8, 84, 47, 123, 29, 105, 68, 144,
	11, 87, 50, 126, 32, 108, 71, 147,
	14, 90, 53, 129, 35, 111, 74, 150,
	17, 93, 56, 132, 37, 112, 76, 148,
	2, 88, 40, 115, 19, 97, 58, 133,
	4, 75, 43, 118, 22, 100, 61, 136,
	7, 85, 46, 121, 25, 103, 64, 139,
	10, 82, 49, 124, 28, 106, 67, 142,
	13, 91, 52, 127, 31, 109, 73, 145,
	16, 94, 55, 130, 34, 113, 70, 151,
	0, 80, 39, 116, 21, 95, 57, 134,
	6, 78, 42, 119, 24, 98, 60, 137,
	9, 83, 45, 122, 27, 101, 63, 140,
	12, 86, 48, 125, 30, 104, 66, 143,
	15, 89, 51, 128, 33, 107, 69, 146,
	18, 92, 54, 131, 36, 110, 72, 149,
}

// diffPrecodUHF is the UHF differential precoding index table (PAS 0001-2
// §6.2.4.2): each entry is 1 or 2, identifying how far back position j XORs
// against during the precoding inverse.
var diffPrecodUHF = [FrameDataLen]byte{
	1, 1, 1, 1, 1, 1, 1, 2,
	1, 1, 2, 1, 1, 2, 1, 1,
	2, 1, 1, 2, 1, 1, 2, 1,
	1, 2, 1, 1, 2, 1, 1, 2,
	1, 1, 2, 1, 1, 2, 1, 1,
	2, 1, 1, 2, 1, 1, 2, 1,
	1, 2, 1, 1, 2, 1, 1, 2,
	1, 1, 2, 1, 1, 2, 1, 1,
	2, 1, 1, 2, 1, 1, 2, 1,
	1, 2, 1, 1, 2, 1, 1, 1,
	1, 1, 1, 2, 1, 1, 2, 1,
	1, 2, 1, 1, 2, 1, 1, 2,
	1, 1, 2, 1, 1, 2, 1, 1,
	2, 1, 1, 2, 1, 1, 2, 1,
	1, 2, 1, 1, 2, 1, 1, 2,
	1, 1, 2, 1, 1, 2, 1, 1,
	2, 1, 1, 2, 1, 1, 2, 1,
	1, 2, 1, 1, 2, 1, 1, 2,
	1, 1, 2, 1, 1, 2, 1, 1,
}
