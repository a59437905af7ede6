package asm

import "fmt"

type operandFormat uint8

const (
	formatNone operandFormat = iota
	formatLocal
	formatByte
	formatShort
	formatNewArray
	formatLdc
	formatField
	formatMethod
	formatInterfaceMethod
	formatClass
	formatIinc
	formatBranch
)

type opInfo struct {
	Code   byte
	Format operandFormat
}

var opcodes = map[string]opInfo{
	"nop":             {0x00, formatNone},
	"aconst_null":     {0x01, formatNone},
	"iconst_m1":       {0x02, formatNone},
	"lconst_0":        {0x09, formatNone},
	"lconst_1":        {0x0A, formatNone},
	"fconst_0":        {0x0B, formatNone},
	"fconst_1":        {0x0C, formatNone},
	"fconst_2":        {0x0D, formatNone},
	"dconst_0":        {0x0E, formatNone},
	"dconst_1":        {0x0F, formatNone},
	"bipush":          {0x10, formatByte},
	"sipush":          {0x11, formatShort},
	"ldc":             {0x12, formatLdc},
	"iload":           {0x15, formatLocal},
	"lload":           {0x16, formatLocal},
	"fload":           {0x17, formatLocal},
	"dload":           {0x18, formatLocal},
	"aload":           {0x19, formatLocal},
	"iaload":          {0x2E, formatNone},
	"laload":          {0x2F, formatNone},
	"faload":          {0x30, formatNone},
	"daload":          {0x31, formatNone},
	"aaload":          {0x32, formatNone},
	"baload":          {0x33, formatNone},
	"caload":          {0x34, formatNone},
	"saload":          {0x35, formatNone},
	"istore":          {0x36, formatLocal},
	"lstore":          {0x37, formatLocal},
	"fstore":          {0x38, formatLocal},
	"dstore":          {0x39, formatLocal},
	"astore":          {0x3A, formatLocal},
	"iastore":         {0x4F, formatNone},
	"lastore":         {0x50, formatNone},
	"fastore":         {0x51, formatNone},
	"dastore":         {0x52, formatNone},
	"aastore":         {0x53, formatNone},
	"bastore":         {0x54, formatNone},
	"castore":         {0x55, formatNone},
	"sastore":         {0x56, formatNone},
	"pop":             {0x57, formatNone},
	"pop2":            {0x58, formatNone},
	"dup":             {0x59, formatNone},
	"dup_x1":          {0x5A, formatNone},
	"dup_x2":          {0x5B, formatNone},
	"dup2":            {0x5C, formatNone},
	"dup2_x1":         {0x5D, formatNone},
	"dup2_x2":         {0x5E, formatNone},
	"swap":            {0x5F, formatNone},
	"iinc":            {0x84, formatIinc},
	"lcmp":            {0x94, formatNone},
	"fcmpl":           {0x95, formatNone},
	"fcmpg":           {0x96, formatNone},
	"dcmpl":           {0x97, formatNone},
	"dcmpg":           {0x98, formatNone},
	"ifeq":            {0x99, formatBranch},
	"ifne":            {0x9A, formatBranch},
	"iflt":            {0x9B, formatBranch},
	"ifge":            {0x9C, formatBranch},
	"ifgt":            {0x9D, formatBranch},
	"ifle":            {0x9E, formatBranch},
	"if_icmpeq":       {0x9F, formatBranch},
	"if_icmpne":       {0xA0, formatBranch},
	"if_icmplt":       {0xA1, formatBranch},
	"if_icmpge":       {0xA2, formatBranch},
	"if_icmpgt":       {0xA3, formatBranch},
	"if_icmple":       {0xA4, formatBranch},
	"if_acmpeq":       {0xA5, formatBranch},
	"if_acmpne":       {0xA6, formatBranch},
	"goto":            {0xA7, formatBranch},
	"ireturn":         {0xAC, formatNone},
	"lreturn":         {0xAD, formatNone},
	"freturn":         {0xAE, formatNone},
	"dreturn":         {0xAF, formatNone},
	"areturn":         {0xB0, formatNone},
	"return":          {0xB1, formatNone},
	"getstatic":       {0xB2, formatField},
	"putstatic":       {0xB3, formatField},
	"getfield":        {0xB4, formatField},
	"putfield":        {0xB5, formatField},
	"invokevirtual":   {0xB6, formatMethod},
	"invokespecial":   {0xB7, formatMethod},
	"invokestatic":    {0xB8, formatMethod},
	"invokeinterface": {0xB9, formatInterfaceMethod},
	"new":             {0xBB, formatClass},
	"newarray":        {0xBC, formatNewArray},
	"anewarray":       {0xBD, formatClass},
	"arraylength":     {0xBE, formatNone},
	"athrow":          {0xBF, formatNone},
	"checkcast":       {0xC0, formatClass},
	"instanceof":      {0xC1, formatClass},
	"monitorenter":    {0xC2, formatNone},
	"monitorexit":     {0xC3, formatNone},
	"ifnull":          {0xC6, formatBranch},
	"ifnonnull":       {0xC7, formatBranch},
}

const (
	opLdcW   = 0x13
	opLdc2W  = 0x14
	opIconst = 0x03
)

// arithmetic opcodes run in blocks of four: int, long, float, double.
var arithmetic = []string{"add", "sub", "mul", "div", "rem", "neg"}

// conversions in opcode order starting at i2l.
var conversions = []string{"i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f", "i2b", "i2c", "i2s"}

// shifts and bitwise operations in opcode order starting at ishl.
var bitwise = []string{"ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land", "ior", "lor", "ixor", "lxor"}

func init() {
	for i := 0; i <= 5; i++ {
		opcodes[fmt.Sprintf("iconst_%d", i)] = opInfo{byte(opIconst + i), formatNone}
	}
	for t, prefix := range "ilfda" {
		for i := 0; i < 4; i++ {
			opcodes[fmt.Sprintf("%cload_%d", prefix, i)] = opInfo{byte(0x1A + 4*t + i), formatNone}
			opcodes[fmt.Sprintf("%cstore_%d", prefix, i)] = opInfo{byte(0x3B + 4*t + i), formatNone}
		}
	}
	for i, name := range arithmetic {
		for t, prefix := range "ilfd" {
			opcodes[string(prefix)+name] = opInfo{byte(0x60 + 4*i + t), formatNone}
		}
	}
	for i, name := range bitwise {
		opcodes[name] = opInfo{byte(0x78 + i), formatNone}
	}
	for i, name := range conversions {
		opcodes[name] = opInfo{byte(0x85 + i), formatNone}
	}
}

// newarray element type codes.
var arrayTypes = map[string]byte{
	"boolean": 4,
	"char":    5,
	"float":   6,
	"double":  7,
	"byte":    8,
	"short":   9,
	"int":     10,
	"long":    11,
}
