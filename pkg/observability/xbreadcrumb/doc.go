// Package xbreadcrumb 提供面包屑记录模型与内存缓冲区。
//
// 面包屑是附加在后续错误报告上的轻量事件记录。本包只定义数据结构
// 和 [Recorder] 接口，持久化与上报由事件上报子系统负责。
//
// [Buffer] 是默认的 Recorder 实现：固定容量的环形缓冲区，满时覆盖最旧记录，
// 支持记录前钩子（[WithBeforeBreadcrumb]）过滤或改写。
package xbreadcrumb
